package service

import (
	"context"
	"math"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
)

type GradeService struct {
	gradeRepo    repository.GradeRepository
	homeworkRepo repository.HomeworkRepository
}

func NewGradeService(gradeRepo repository.GradeRepository, homeworkRepo repository.HomeworkRepository) *GradeService {
	return &GradeService{gradeRepo: gradeRepo, homeworkRepo: homeworkRepo}
}

type SetGradeRequest struct {
	StudentID common.ID `json:"student_id" validate:"required,gt=0"`
	OfferID   common.ID `json:"offer_id" validate:"required,gt=0"`
	Grade     *float64  `json:"grade" validate:"required"`
}

type GradeSubmissionRequest struct {
	SubmissionID common.ID `json:"submission_id" validate:"required,gt=0"`
	Grade        *float64  `json:"grade" validate:"required"`
}

func checkGrade(g float64) error {
	if math.IsNaN(g) || g < 0 || g > 100 {
		return common.ErrInvalidGrade
	}
	return nil
}

// SetCourseGrade upserts the student's grade for the offer.
func (s *GradeService) SetCourseGrade(ctx context.Context, req SetGradeRequest) error {
	if err := common.Validate(req); err != nil {
		return err
	}
	if err := checkGrade(*req.Grade); err != nil {
		return err
	}
	return s.gradeRepo.Upsert(ctx, model.Grade{StudentID: int64(req.StudentID), CourseOfferID: int64(req.OfferID), Grade: *req.Grade})
}

func (s *GradeService) StudentGrades(ctx context.Context, studentID int64) ([]model.StudentGrade, error) {
	return s.gradeRepo.ListByStudent(ctx, studentID)
}

func (s *GradeService) SetSubmissionGrade(ctx context.Context, req GradeSubmissionRequest) error {
	if err := common.Validate(req); err != nil {
		return err
	}
	if err := checkGrade(*req.Grade); err != nil {
		return err
	}
	return s.homeworkRepo.GradeSubmission(ctx, int64(req.SubmissionID), *req.Grade)
}
