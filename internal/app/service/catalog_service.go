package service

import (
	"context"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
)

type CatalogService struct {
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
}

func NewCatalogService(courseRepo repository.CourseRepository, userRepo repository.UserRepository) *CatalogService {
	return &CatalogService{courseRepo: courseRepo, userRepo: userRepo}
}

type CreateOfferRequest struct {
	CourseName string    `json:"courseName" validate:"required"`
	LecturerID common.ID `json:"lecturerId" validate:"required,gt=0"`
	Schedule   string    `json:"schedule"`
	Price      float64   `json:"price" validate:"gte=0"`
	MaxSeats   int       `json:"maxSeats" validate:"required,gte=1,lte=10000"`
}

type AddSeatsRequest struct {
	AddSeats int `json:"addSeats" validate:"required,gt=0,lte=10000"`
}

type Tuition struct {
	Lines []model.TuitionLine
	Total float64
}

func (s *CatalogService) ListOpenOffers(ctx context.Context) ([]model.OpenOffer, error) {
	return s.courseRepo.ListOpenOffers(ctx)
}

func (s *CatalogService) ListAllOffers(ctx context.Context) ([]model.AdminOffer, error) {
	return s.courseRepo.ListAllOffers(ctx)
}

func (s *CatalogService) CreateOffer(ctx context.Context, req CreateOfferRequest) (*model.CourseOffer, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	lecturer, err := s.userRepo.FindByID(ctx, int64(req.LecturerID))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("lecturer %d: %w", req.LecturerID, common.ErrNotFound)
		}
		return nil, err
	}
	if lecturer.Role != model.RoleLecturer {
		return nil, common.NewValidationError("lecturerId must reference a lecturer",
			common.FieldError{Field: "lecturerId", Error: "not a lecturer"})
	}

	offer := &model.CourseOffer{
		LecturerID: int64(req.LecturerID),
		Schedule:   req.Schedule,
		Price:      req.Price,
		MaxSeats:   req.MaxSeats,
	}
	if err := s.courseRepo.CreateOffer(ctx, req.CourseName, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// AddSeats grows an offer's capacity and its free seats by the same amount.
func (s *CatalogService) AddSeats(ctx context.Context, offerID int64, req AddSeatsRequest) error {
	if err := common.Validate(req); err != nil {
		return err
	}
	return s.courseRepo.AddSeats(ctx, offerID, req.AddSeats)
}

func (s *CatalogService) MyCourses(ctx context.Context, studentID int64) ([]model.EnrolledCourse, error) {
	return s.courseRepo.ListEnrolledByStudent(ctx, studentID)
}

func (s *CatalogService) StudentCourses(ctx context.Context, studentID int64) ([]model.StudentCourse, error) {
	return s.courseRepo.ListStudentCourses(ctx, studentID)
}

func (s *CatalogService) AvailableOffers(ctx context.Context, studentID int64) ([]model.AvailableOffer, error) {
	return s.courseRepo.ListAvailableForStudent(ctx, studentID)
}

func (s *CatalogService) LecturerOffers(ctx context.Context, lecturerID int64) ([]model.LecturerOffer, error) {
	return s.courseRepo.ListByLecturer(ctx, lecturerID)
}

func (s *CatalogService) Tuition(ctx context.Context, studentID int64) (*Tuition, error) {
	lines, err := s.courseRepo.Tuition(ctx, studentID)
	if err != nil {
		return nil, err
	}
	t := &Tuition{Lines: lines}
	for _, l := range lines {
		t.Total += l.Price
	}
	return t, nil
}
