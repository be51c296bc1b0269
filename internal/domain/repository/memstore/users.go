package memstore

import (
	"context"
	"sort"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type userRepo struct{ d *DB }

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, u := range r.d.users {
		if u.Email == user.Email {
			return common.ErrEmailTaken
		}
	}
	user.ID = r.d.nextID()
	stored := *user
	stored.ImageURL = strPtr(user.ImageURL)
	r.d.users[user.ID] = &stored
	return nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, u := range r.d.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.d.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) TouchLastLogin(ctx context.Context, id int64) (*time.Time, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.d.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	prev := u.LastLogin
	now := r.d.now()
	u.LastLogin = &now
	return prev, nil
}

func (r userRepo) ListByRoles(ctx context.Context, roles ...string) ([]model.UserSummary, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	want := map[string]bool{}
	for _, role := range roles {
		want[role] = true
	}
	out := []model.UserSummary{}
	for _, u := range r.d.users {
		if want[u.Role] {
			out = append(out, model.UserSummary{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
