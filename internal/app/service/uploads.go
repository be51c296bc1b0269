package service

import (
	"context"
	"io"

	"coursehub/internal/common"
)

// Upload is a file received with a request.
type Upload struct {
	Name string
	Body io.Reader
}

// FileStore persists uploaded files under generated keys.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

// FileJanitor disposes of stored files whose rows are gone.
type FileJanitor interface {
	Discard(ctx context.Context, keys ...string) error
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role string
}

func requireUpload(u *Upload) error {
	if u == nil || u.Body == nil || u.Name == "" {
		return common.ErrMissingFile
	}
	return nil
}
