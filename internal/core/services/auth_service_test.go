package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/mocks"
	"github.com/campusdesk/capstone-support-backend/internal/core/services"
)

func newAuthService(users *mocks.MockUserRepository) *services.AuthService {
	return services.NewAuthService(users, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := domain.HashPassword("Secret123")
	require.NoError(t, err)
	account := &domain.User{ID: 10, Email: "student@campus.edu", Role: domain.RoleStudent, HashedPassword: hash}

	t.Run("valid credentials", func(t *testing.T) {
		users := mocks.NewMockUserRepository()
		users.On("GetByEmail", ctx, "student@campus.edu").Return(account, nil)

		user, err := newAuthService(users).Login(ctx, "student@campus.edu", "Secret123")

		require.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
	})

	t.Run("email is normalized before lookup", func(t *testing.T) {
		users := mocks.NewMockUserRepository()
		users.On("GetByEmail", ctx, "student@campus.edu").Return(account, nil)

		_, err := newAuthService(users).Login(ctx, "  Student@Campus.EDU  ", "Secret123")

		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := mocks.NewMockUserRepository()
		users.On("GetByEmail", ctx, "student@campus.edu").Return(account, nil)

		_, err := newAuthService(users).Login(ctx, "student@campus.edu", "wrong")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown account maps to the same error", func(t *testing.T) {
		users := mocks.NewMockUserRepository()
		users.On("GetByEmail", ctx, "ghost@campus.edu").Return(nil, errors.New("no rows"))

		_, err := newAuthService(users).Login(ctx, "ghost@campus.edu", "Secret123")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := newAuthService(mocks.NewMockUserRepository()).Login(ctx, "   ", "Secret123")
		assert.ErrorIs(t, err, apperrors.ErrEmailRequired)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := newAuthService(mocks.NewMockUserRepository()).Login(ctx, "student@campus.edu", "")
		assert.ErrorIs(t, err, apperrors.ErrPasswordRequired)
	})
}
