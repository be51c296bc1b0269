package service

import (
	"context"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/metrics"

	"go.uber.org/zap"
)

type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	userRepo       repository.UserRepository
	log            *zap.Logger
}

func NewEnrollmentService(enrollmentRepo repository.EnrollmentRepository, userRepo repository.UserRepository, log *zap.Logger) *EnrollmentService {
	return &EnrollmentService{enrollmentRepo: enrollmentRepo, userRepo: userRepo, log: log}
}

type EnrollRequest struct {
	StudentID common.ID `json:"student_id" validate:"required,gt=0"`
	OfferID   common.ID `json:"offer_id" validate:"required,gt=0"`
}

// Enroll takes one seat of the offer for the student.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) error {
	if err := common.Validate(req); err != nil {
		return err
	}
	err := s.enroll(ctx, req)
	metrics.Enrollments.WithLabelValues(enrollResult(err)).Inc()
	if err == nil {
		s.log.Info("student enrolled", zap.Int64("student_id", int64(req.StudentID)), zap.Int64("offer_id", int64(req.OfferID)))
	}
	return err
}

func (s *EnrollmentService) enroll(ctx context.Context, req EnrollRequest) error {
	student, err := s.userRepo.FindByID(ctx, int64(req.StudentID))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("student %d: %w", req.StudentID, common.ErrNotFound)
		}
		return err
	}
	if student.Role != model.RoleStudent {
		return common.NewValidationError("student_id must reference a student",
			common.FieldError{Field: "student_id", Error: "not a student"})
	}
	return s.enrollmentRepo.Enroll(ctx, int64(req.StudentID), int64(req.OfferID))
}

func enrollResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrNoSeatsAvailable):
		return "no_seats"
	case errors.Is(err, common.ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrValidation):
		return "invalid"
	}
	return "error"
}

// Cancel releases the student's seat. Cancelling a missing enrollment is
// ErrNotEnrolled and leaves the seat count alone.
func (s *EnrollmentService) Cancel(ctx context.Context, req EnrollRequest) error {
	if err := common.Validate(req); err != nil {
		return err
	}
	removed, err := s.enrollmentRepo.Cancel(ctx, int64(req.StudentID), int64(req.OfferID))
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrNotEnrolled
	}
	s.log.Info("enrollment cancelled", zap.Int64("student_id", int64(req.StudentID)), zap.Int64("offer_id", int64(req.OfferID)))
	return nil
}

func (s *EnrollmentService) CourseStudents(ctx context.Context, offerID int64) ([]model.CourseStudent, error) {
	return s.enrollmentRepo.ListCourseStudents(ctx, offerID)
}

func (s *EnrollmentService) Registrations(ctx context.Context, offerID int64) ([]model.Registration, error) {
	return s.enrollmentRepo.ListRegistrations(ctx, offerID)
}
