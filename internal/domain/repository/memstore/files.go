package memstore

import (
	"context"
	"fmt"
	"sort"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type fileRepo struct{ d *DB }

func (r fileRepo) Create(ctx context.Context, f *model.CourseFile) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.offers[f.CourseOfferID]; !ok {
		return fmt.Errorf("course offer or lecturer: %w", common.ErrNotFound)
	}
	if _, ok := r.d.users[f.LecturerID]; !ok {
		return fmt.Errorf("course offer or lecturer: %w", common.ErrNotFound)
	}
	f.ID = r.d.nextID()
	f.UploadedAt = r.d.now()
	stored := *f
	r.d.files[f.ID] = &stored
	return nil
}

func (r fileRepo) ListByOffer(ctx context.Context, offerID int64) ([]model.CourseFile, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.CourseFile{}
	for _, f := range r.d.files {
		if f.CourseOfferID == offerID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fileRepo) Delete(ctx context.Context, id int64) (*model.CourseFile, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	f, ok := r.d.files[id]
	if !ok {
		return nil, fmt.Errorf("course file %d: %w", id, common.ErrNotFound)
	}
	delete(r.d.files, id)
	return f, nil
}
