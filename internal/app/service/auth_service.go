package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/repository"

	"go.uber.org/zap"
)

// LoginLimiter counts failed logins. A nil limiter disables throttling.
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenIssuer
	limiter  LoginLimiter
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenIssuer, limiter LoginLimiter, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, limiter: limiter, log: log}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success   bool       `json:"success"`
	Role      string     `json:"role"`
	Name      string     `json:"name"`
	ID        int64      `json:"id"`
	Image     *string    `json:"image"`
	LastLogin *time.Time `json:"last_login"`
	Token     string     `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the credentials and returns the login time before this one.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, email)
		if err != nil {
			s.log.Warn("login limiter unavailable", zap.Error(err))
		} else if blocked {
			return nil, fmt.Errorf("too many failed login attempts: %w", common.ErrTooManyRequests)
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, fmt.Errorf("invalid email or password: %w", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		s.recordFailure(ctx, email)
		return nil, fmt.Errorf("invalid email or password: %w", common.ErrUnauthorized)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn("resetting login failures", zap.Error(err))
		}
	}

	previous, err := s.userRepo.TouchLastLogin(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{
		Success:   true,
		Role:      user.Role,
		Name:      user.FullName,
		ID:        user.ID,
		Image:     user.ImageURL,
		LastLogin: previous,
		Token:     token,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.log.Warn("counting login failure", zap.Error(err))
	}
}
