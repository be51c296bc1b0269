package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/storage"

	"go.uber.org/zap"
)

type HomeworkService struct {
	homeworkRepo repository.HomeworkRepository
	store        FileStore
	janitor      FileJanitor
	log          *zap.Logger
}

func NewHomeworkService(homeworkRepo repository.HomeworkRepository, store FileStore, janitor FileJanitor, log *zap.Logger) *HomeworkService {
	return &HomeworkService{homeworkRepo: homeworkRepo, store: store, janitor: janitor, log: log}
}

type CreateAssignmentRequest struct {
	CourseOfferID int64  `json:"course_offer_id" validate:"required,gt=0"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	DueDate       string `json:"due_date" validate:"required"`
}

type SubmitRequest struct {
	AssignmentID int64 `json:"assignment_id" validate:"required,gt=0"`
	StudentID    int64 `json:"student_id" validate:"required,gt=0"`
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// parseDueDate accepts RFC 3339 as well as the formats HTML date inputs send.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.NewValidationError("due_date is not a valid date",
		common.FieldError{Field: "due_date", Error: "invalid date"})
}

func (s *HomeworkService) CreateAssignment(ctx context.Context, req CreateAssignmentRequest, upload *Upload) (*model.HomeworkAssignment, error) {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.DueDate) == "" {
		missing = append(missing, "due_date")
	}
	if len(missing) > 0 {
		return nil, common.MissingFields(missing...)
	}
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	a := &model.HomeworkAssignment{
		CourseOfferID: req.CourseOfferID,
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       due,
	}
	var key string
	if upload != nil {
		if key, err = s.put(ctx, storage.AreaHomework, upload); err != nil {
			return nil, err
		}
		a.FilePath = &key
	}

	if err := s.homeworkRepo.CreateAssignment(ctx, a); err != nil {
		s.unput(ctx, key)
		return nil, err
	}
	return a, nil
}

func (s *HomeworkService) ListByOffer(ctx context.Context, offerID int64) ([]model.HomeworkAssignment, error) {
	return s.homeworkRepo.ListByOffer(ctx, offerID)
}

// Close stops an assignment from accepting submissions. Closing twice is fine.
func (s *HomeworkService) Close(ctx context.Context, assignmentID int64) error {
	return s.homeworkRepo.Close(ctx, assignmentID)
}

// DeleteAssignment drops the assignment with all its submissions and hands
// their files to the janitor. Repeating it is a no-op.
func (s *HomeworkService) DeleteAssignment(ctx context.Context, assignmentID int64) error {
	keys, err := s.homeworkRepo.DeleteAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	s.discard(ctx, keys...)
	return nil
}

// Submit stores the file and appends a submission. Closed assignments refuse it.
func (s *HomeworkService) Submit(ctx context.Context, req SubmitRequest, upload *Upload) (*model.HomeworkSubmission, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if err := requireUpload(upload); err != nil {
		return nil, err
	}

	// checked again atomically on insert; this only avoids storing a file for nothing
	a, err := s.homeworkRepo.FindAssignment(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("homework assignment %d: %w", req.AssignmentID, common.ErrNotFound)
		}
		return nil, err
	}
	if a.IsClosed {
		return nil, common.ErrAssignmentClosed
	}

	key, err := s.put(ctx, storage.AreaSubmissions, upload)
	if err != nil {
		return nil, err
	}
	sub := &model.HomeworkSubmission{
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		FilePath:     key,
		OriginalName: upload.Name,
	}
	if err := s.homeworkRepo.CreateSubmission(ctx, sub); err != nil {
		s.unput(ctx, key)
		return nil, err
	}
	return sub, nil
}

// LatestSubmission returns the student's current submission, or nil if none.
func (s *HomeworkService) LatestSubmission(ctx context.Context, assignmentID, studentID int64) (*model.HomeworkSubmission, error) {
	sub, err := s.homeworkRepo.LatestSubmission(ctx, assignmentID, studentID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	return sub, err
}

func (s *HomeworkService) SubmissionHistory(ctx context.Context, assignmentID, studentID int64) ([]model.HomeworkSubmission, error) {
	return s.homeworkRepo.SubmissionHistory(ctx, assignmentID, studentID)
}

func (s *HomeworkService) Submissions(ctx context.Context, assignmentID int64) ([]model.SubmissionView, error) {
	return s.homeworkRepo.ListSubmissions(ctx, assignmentID)
}

// DeleteSubmission removes a submission. Students may only delete their own;
// deleting one that is already gone succeeds.
func (s *HomeworkService) DeleteSubmission(ctx context.Context, actor Actor, submissionID int64) error {
	sub, err := s.homeworkRepo.FindSubmission(ctx, submissionID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !model.IsStaff(actor.Role) && sub.StudentID != actor.ID {
		return fmt.Errorf("submission %d belongs to another student: %w", submissionID, common.ErrForbidden)
	}

	key, ok, err := s.homeworkRepo.DeleteSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if ok {
		s.discard(ctx, key)
	}
	return nil
}

func (s *HomeworkService) put(ctx context.Context, area string, upload *Upload) (string, error) {
	key := storage.NewKey(area, upload.Name)
	if err := s.store.Put(ctx, key, upload.Body); err != nil {
		return "", common.Errorf("storing upload: %w", err)
	}
	return key, nil
}

// unput removes a file stored for a row that was never written.
func (s *HomeworkService) unput(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("removing orphaned upload", zap.String("key", key), zap.Error(err))
	}
}

func (s *HomeworkService) discard(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.janitor.Discard(ctx, keys...); err != nil {
		s.log.Error("scheduling upload cleanup", zap.Strings("keys", keys), zap.Error(err))
	}
}
