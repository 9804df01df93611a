package services

import (
	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// AuthzService is the static access-control policy. The rule table is fixed
// at compile time; decisions are pure functions of the principal, the
// requested action and the ticket facts the caller fetched beforehand.
type AuthzService struct{}

// NewAuthzService creates the authorization policy.
func NewAuthzService() *AuthzService {
	return &AuthzService{}
}

var _ ports.AuthorizationPolicy = (*AuthzService)(nil)

// Decide evaluates the rule table top to bottom and returns the first
// match. Admin short-circuits every check, so later rules only need to
// consider students and TAs.
func (s *AuthzService) Decide(principal domain.Principal, action domain.Action, facts *domain.TicketFacts) domain.Decision {
	if !principal.Role.IsValid() {
		return domain.Deny("unknown role")
	}

	if principal.Role == domain.RoleAdmin {
		return domain.Allow()
	}

	switch action {
	case domain.ActionListAll:
		if principal.Role == domain.RoleTA {
			return domain.Allow()
		}
		return domain.Deny("only staff may list all tickets")

	case domain.ActionListAssigned:
		if principal.Role == domain.RoleTA {
			return domain.Allow()
		}
		return domain.Deny("only TAs have an assigned-tickets view")

	case domain.ActionListByUser:
		if principal.Role == domain.RoleTA {
			return domain.Allow()
		}
		if facts != nil && facts.StudentID == principal.ID {
			return domain.Allow()
		}
		return domain.Deny("students may only list their own tickets")

	case domain.ActionViewOne, domain.ActionListMessages:
		if facts == nil {
			return domain.Deny("not authorized to view this ticket")
		}
		if facts.StudentID == principal.ID {
			return domain.Allow()
		}
		if facts.HasAssignee(principal.ID) {
			return domain.Allow()
		}
		return domain.Deny("not authorized to view this ticket")

	case domain.ActionCreate:
		return domain.Allow()

	case domain.ActionEditOrStatus, domain.ActionAddMessage:
		if facts == nil {
			return domain.Deny("not authorized to modify this ticket")
		}
		if principal.Role == domain.RoleStudent && facts.StudentID == principal.ID {
			return domain.Allow()
		}
		if principal.Role == domain.RoleTA && facts.HasAssignee(principal.ID) {
			return domain.Allow()
		}
		return domain.Deny("not authorized to modify this ticket")

	case domain.ActionEscalate:
		if principal.Role == domain.RoleTA {
			return domain.Allow()
		}
		return domain.Deny("only TAs may escalate tickets")

	case domain.ActionDeescalate:
		return domain.Deny("only admins may de-escalate tickets")

	case domain.ActionReassign:
		return domain.Deny("only admins may reassign tickets")

	case domain.ActionDelete:
		return domain.Deny("only admins may delete tickets")

	case domain.ActionListStaff:
		if principal.Role == domain.RoleTA {
			return domain.Allow()
		}
		return domain.Deny("only staff may list assignable staff")
	}

	return domain.Deny("unknown action")
}
