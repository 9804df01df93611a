package services

import (
	"context"
	"fmt"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// AssigneeService exposes the roster of staff a ticket can be assigned to.
type AssigneeService struct {
	users  ports.UserRepository
	policy ports.AuthorizationPolicy
}

// NewAssigneeService creates an assignee service.
func NewAssigneeService(users ports.UserRepository, policy ports.AuthorizationPolicy) *AssigneeService {
	return &AssigneeService{users: users, policy: policy}
}

var _ ports.AssigneeService = (*AssigneeService)(nil)

// ListStaff returns every TA and admin account.
func (s *AssigneeService) ListStaff(ctx context.Context, principal domain.Principal) ([]*domain.User, error) {
	if d := s.policy.Decide(principal, domain.ActionListStaff, nil); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	staff, err := s.users.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing staff: %w", err)
	}
	if staff == nil {
		staff = []*domain.User{}
	}
	return staff, nil
}
