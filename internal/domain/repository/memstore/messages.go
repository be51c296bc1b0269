package memstore

import (
	"context"
	"fmt"
	"sort"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type messageRepo struct{ d *DB }

func (r messageRepo) CreateTicket(ctx context.Context, m *model.StudentMessage) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[m.StudentID]; !ok {
		return fmt.Errorf("student %d: %w", m.StudentID, common.ErrNotFound)
	}
	m.ID = r.d.nextID()
	m.SentAt = r.d.now()
	m.AdminResponse = nil
	stored := *m
	r.d.tickets[m.ID] = &stored
	return nil
}

func newestFirst(out []model.StudentMessage) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.After(out[j].SentAt)
		}
		return out[i].ID > out[j].ID
	})
}

func (r messageRepo) ListTicketsByStudent(ctx context.Context, studentID int64) ([]model.StudentMessage, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.StudentMessage{}
	for _, m := range r.d.tickets {
		if m.StudentID == studentID {
			cp := *m
			cp.AdminResponse = strPtr(m.AdminResponse)
			out = append(out, cp)
		}
	}
	newestFirst(out)
	return out, nil
}

func (r messageRepo) ListAllTickets(ctx context.Context) ([]model.TicketView, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	msgs := make([]model.StudentMessage, 0, len(r.d.tickets))
	for _, m := range r.d.tickets {
		cp := *m
		cp.AdminResponse = strPtr(m.AdminResponse)
		msgs = append(msgs, cp)
	}
	newestFirst(msgs)
	out := make([]model.TicketView, 0, len(msgs))
	for _, m := range msgs {
		t := model.TicketView{StudentMessage: m}
		if u, ok := r.d.users[m.StudentID]; ok {
			t.FullName, t.Email = u.FullName, u.Email
		}
		out = append(out, t)
	}
	return out, nil
}

func (r messageRepo) RespondTicket(ctx context.Context, id int64, response string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	m, ok := r.d.tickets[id]
	if !ok {
		return fmt.Errorf("message %d: %w", id, common.ErrNotFound)
	}
	if m.AdminResponse != nil {
		return common.ErrAlreadyAnswered
	}
	m.AdminResponse = &response
	return nil
}

func (r messageRepo) CreatePost(ctx context.Context, m *model.CourseMessage) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.offers[m.OfferID]; !ok {
		return fmt.Errorf("course offer or user: %w", common.ErrNotFound)
	}
	if _, ok := r.d.users[m.UserID]; !ok {
		return fmt.Errorf("course offer or user: %w", common.ErrNotFound)
	}
	m.ID = r.d.nextID()
	m.Timestamp = r.d.now()
	stored := *m
	stored.FullName = ""
	r.d.posts[m.ID] = &stored
	return nil
}

func (r messageRepo) ListPosts(ctx context.Context, offerID int64) ([]model.CourseMessage, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.CourseMessage{}
	for _, m := range r.d.posts {
		if m.OfferID == offerID {
			cp := *m
			cp.FullName = r.d.userName(m.UserID)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
