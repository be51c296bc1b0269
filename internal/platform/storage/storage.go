package storage

import (
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Store keeps uploaded files and serves them back under /uploads.
type Store interface {
	http.Handler
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

// Areas group stored keys by what uploaded them.
const (
	AreaCourseFiles = "course-files"
	AreaHomework    = "homeworks"
	AreaSubmissions = "submissions"
)

// NewKey returns a collision-free key that still reads like the uploaded name,
// e.g. "homeworks/3f0c...-lab-report.pdf".
func NewKey(area, originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "file"
	}
	if len(ext) > 16 || strings.ContainsAny(ext, " /") {
		ext = ""
	}
	return path.Join(area, uuid.NewString()+"-"+name+ext)
}

// InlineJanitor deletes keys right away. Used when no cleanup queue is configured.
type InlineJanitor struct {
	Store Store
	Log   *zap.Logger
}

func (j InlineJanitor) Discard(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := j.Store.Delete(ctx, k); err != nil {
			// the row is already gone, so only warn
			j.Log.Warn("deleting stored upload", zap.String("key", k), zap.Error(err))
		}
	}
	return nil
}
