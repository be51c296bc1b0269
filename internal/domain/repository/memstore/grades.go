package memstore

import (
	"context"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type gradeRepo struct{ d *DB }

func (r gradeRepo) Upsert(ctx context.Context, g model.Grade) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[g.StudentID]; !ok {
		return fmt.Errorf("student or course offer: %w", common.ErrNotFound)
	}
	if _, ok := r.d.offers[g.CourseOfferID]; !ok {
		return fmt.Errorf("student or course offer: %w", common.ErrNotFound)
	}
	r.d.grades[pair{g.StudentID, g.CourseOfferID}] = g.Grade
	return nil
}

func (r gradeRepo) ListByStudent(ctx context.Context, studentID int64) ([]model.StudentGrade, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.StudentGrade{}
	for _, o := range sortedOffers(r.d) {
		if _, ok := r.d.enrollments[pair{studentID, o.ID}]; !ok {
			continue
		}
		out = append(out, model.StudentGrade{
			OfferID: o.ID, Name: r.d.courseName(o), Lecturer: r.d.userName(o.LecturerID), Grade: r.d.grade(studentID, o.ID),
		})
	}
	return out, nil
}
