package service

import (
	"context"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type AddUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=student lecturer admin"`
}

func (s *UserService) AddUser(ctx context.Context, req AddUserRequest) (*model.User, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FullName:       req.FullName,
		Email:          normalizeEmail(req.Email),
		HashedPassword: hashedPassword,
		Role:           req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// EnsureAdmin creates an admin with the given credentials unless the email is
// already registered.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return false, err
	}
	_, err = s.AddUser(ctx, AddUserRequest{FullName: "Administrator", Email: email, Password: password, Role: model.RoleAdmin})
	if errors.Is(err, common.ErrEmailTaken) {
		return false, nil
	}
	return err == nil, err
}

// ListUsers returns students and lecturers ordered by name.
func (s *UserService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	return s.userRepo.ListByRoles(ctx, model.RoleStudent, model.RoleLecturer)
}

func (s *UserService) ListLecturers(ctx context.Context) ([]model.UserSummary, error) {
	return s.userRepo.ListByRoles(ctx, model.RoleLecturer)
}

func (s *UserService) ListStudents(ctx context.Context) ([]model.UserSummary, error) {
	return s.userRepo.ListByRoles(ctx, model.RoleStudent)
}
