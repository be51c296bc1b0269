package memstore

import (
	"context"
	"fmt"
	"sort"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type enrollmentRepo struct{ d *DB }

func (r enrollmentRepo) Enroll(ctx context.Context, studentID, offerID int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o, ok := r.d.offers[offerID]
	if !ok {
		return fmt.Errorf("course offer %d: %w", offerID, common.ErrNotFound)
	}
	if o.RemainingSeats <= 0 {
		return common.ErrNoSeatsAvailable
	}
	if _, ok := r.d.users[studentID]; !ok {
		return fmt.Errorf("student %d: %w", studentID, common.ErrNotFound)
	}
	key := pair{studentID, offerID}
	if _, ok := r.d.enrollments[key]; ok {
		return common.ErrAlreadyEnrolled
	}
	r.d.enrollments[key] = r.d.now()
	o.RemainingSeats--
	return nil
}

func (r enrollmentRepo) Cancel(ctx context.Context, studentID, offerID int64) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	key := pair{studentID, offerID}
	if _, ok := r.d.enrollments[key]; !ok {
		return false, nil
	}
	delete(r.d.enrollments, key)
	if o, ok := r.d.offers[offerID]; ok && o.RemainingSeats < o.MaxSeats {
		o.RemainingSeats++
	}
	return true, nil
}

func (r enrollmentRepo) ListCourseStudents(ctx context.Context, offerID int64) ([]model.CourseStudent, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.CourseStudent{}
	for p := range r.d.enrollments {
		if p.offer != offerID {
			continue
		}
		u := r.d.users[p.student]
		if u == nil {
			continue
		}
		out = append(out, model.CourseStudent{ID: u.ID, FullName: u.FullName, Email: u.Email, Grade: r.d.grade(u.ID, offerID)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r enrollmentRepo) ListRegistrations(ctx context.Context, offerID int64) ([]model.Registration, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.Registration{}
	for p, at := range r.d.enrollments {
		if p.offer != offerID {
			continue
		}
		u := r.d.users[p.student]
		if u == nil {
			continue
		}
		out = append(out, model.Registration{
			StudentID: u.ID, FullName: u.FullName, Email: u.Email, EnrolledAt: at, Grade: r.d.grade(u.ID, offerID),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.Before(out[j].EnrolledAt)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}
