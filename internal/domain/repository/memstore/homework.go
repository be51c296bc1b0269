package memstore

import (
	"context"
	"fmt"
	"sort"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type homeworkRepo struct{ d *DB }

func (r homeworkRepo) CreateAssignment(ctx context.Context, a *model.HomeworkAssignment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.offers[a.CourseOfferID]; !ok {
		return fmt.Errorf("course offer %d: %w", a.CourseOfferID, common.ErrNotFound)
	}
	a.ID = r.d.nextID()
	a.IsClosed = false
	stored := *a
	stored.FilePath = strPtr(a.FilePath)
	r.d.assignments[a.ID] = &stored
	return nil
}

// view must be called with mu held.
func (r homeworkRepo) view(a *model.HomeworkAssignment) model.HomeworkAssignment {
	cp := *a
	cp.FilePath = strPtr(a.FilePath)
	cp.SubmissionCount = 0
	for _, s := range r.d.submissions {
		if s.AssignmentID == a.ID {
			cp.SubmissionCount++
		}
	}
	return cp
}

func (r homeworkRepo) FindAssignment(ctx context.Context, id int64) (*model.HomeworkAssignment, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.assignments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	v := r.view(a)
	return &v, nil
}

func (r homeworkRepo) ListByOffer(ctx context.Context, offerID int64) ([]model.HomeworkAssignment, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.HomeworkAssignment{}
	for _, a := range r.d.assignments {
		if a.CourseOfferID == offerID {
			out = append(out, r.view(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r homeworkRepo) Close(ctx context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.assignments[id]
	if !ok {
		return fmt.Errorf("homework assignment %d: %w", id, common.ErrNotFound)
	}
	a.IsClosed = true
	return nil
}

func (r homeworkRepo) DeleteAssignment(ctx context.Context, id int64) ([]string, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.assignments[id]
	if !ok {
		return nil, nil
	}
	var keys []string
	for sid, s := range r.d.submissions {
		if s.AssignmentID == id {
			keys = append(keys, s.FilePath)
			delete(r.d.submissions, sid)
		}
	}
	sort.Strings(keys)
	if a.FilePath != nil && *a.FilePath != "" {
		keys = append(keys, *a.FilePath)
	}
	delete(r.d.assignments, id)
	return keys, nil
}

func (r homeworkRepo) CreateSubmission(ctx context.Context, s *model.HomeworkSubmission) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	a, ok := r.d.assignments[s.AssignmentID]
	if !ok {
		return fmt.Errorf("homework assignment %d: %w", s.AssignmentID, common.ErrNotFound)
	}
	if a.IsClosed {
		return common.ErrAssignmentClosed
	}
	if _, ok := r.d.users[s.StudentID]; !ok {
		return fmt.Errorf("student %d: %w", s.StudentID, common.ErrNotFound)
	}
	s.ID = r.d.nextID()
	s.SubmittedAt = r.d.now()
	s.Grade = nil
	stored := *s
	r.d.submissions[s.ID] = &stored
	return nil
}

func copySubmission(s *model.HomeworkSubmission) model.HomeworkSubmission {
	cp := *s
	cp.Grade = floatPtr(s.Grade)
	return cp
}

func (r homeworkRepo) FindSubmission(ctx context.Context, id int64) (*model.HomeworkSubmission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	s, ok := r.d.submissions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := copySubmission(s)
	return &cp, nil
}

// history must be called with mu held. Newest first.
func (r homeworkRepo) history(assignmentID, studentID int64) []model.HomeworkSubmission {
	out := []model.HomeworkSubmission{}
	for _, s := range r.d.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			out = append(out, copySubmission(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r homeworkRepo) LatestSubmission(ctx context.Context, assignmentID, studentID int64) (*model.HomeworkSubmission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	h := r.history(assignmentID, studentID)
	if len(h) == 0 {
		return nil, common.ErrNotFound
	}
	return &h[0], nil
}

func (r homeworkRepo) SubmissionHistory(ctx context.Context, assignmentID, studentID int64) ([]model.HomeworkSubmission, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.history(assignmentID, studentID), nil
}

func (r homeworkRepo) ListSubmissions(ctx context.Context, assignmentID int64) ([]model.SubmissionView, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	out := []model.SubmissionView{}
	for _, s := range r.d.submissions {
		if s.AssignmentID != assignmentID {
			continue
		}
		u := r.d.users[s.StudentID]
		if u == nil {
			continue
		}
		out = append(out, model.SubmissionView{
			SubmissionID: s.ID, StudentID: u.ID, FullName: u.FullName, Email: u.Email,
			FilePath: s.FilePath, OriginalName: s.OriginalName, SubmittedAt: s.SubmittedAt, Grade: floatPtr(s.Grade),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].SubmissionID > out[j].SubmissionID
	})
	return out, nil
}

func (r homeworkRepo) GradeSubmission(ctx context.Context, id int64, grade float64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	s, ok := r.d.submissions[id]
	if !ok {
		return fmt.Errorf("submission %d: %w", id, common.ErrNotFound)
	}
	s.Grade = &grade
	return nil
}

func (r homeworkRepo) DeleteSubmission(ctx context.Context, id int64) (string, bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	s, ok := r.d.submissions[id]
	if !ok {
		return "", false, nil
	}
	delete(r.d.submissions, id)
	return s.FilePath, true, nil
}
