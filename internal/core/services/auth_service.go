package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// AuthService verifies credentials at the login boundary. Failed lookups
// and bad passwords return the same error so the response never reveals
// which one happened.
type AuthService struct {
	users  ports.UserRepository
	logger *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(users ports.UserRepository, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

var _ ports.AuthService = (*AuthService)(nil)

// Login checks the email/password pair and returns the matching account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		s.logger.InfoContext(ctx, "failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
