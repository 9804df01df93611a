package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
)

func TestAuthzService_Decide(t *testing.T) {
	policy := NewAuthzService()

	student := domain.Principal{ID: 10, Role: domain.RoleStudent}
	otherStudent := domain.Principal{ID: 11, Role: domain.RoleStudent}
	ta := domain.Principal{ID: 20, Role: domain.RoleTA}
	otherTA := domain.Principal{ID: 21, Role: domain.RoleTA}
	admin := domain.Principal{ID: 30, Role: domain.RoleAdmin}

	// Ticket owned by student 10, assigned to TA 20.
	facts := &domain.TicketFacts{StudentID: 10, AssigneeIDs: []int64{20}}

	tests := []struct {
		name      string
		principal domain.Principal
		action    domain.Action
		facts     *domain.TicketFacts
		allowed   bool
	}{
		// Admin is allowed everything, including the admin-only actions.
		{"admin lists all", admin, domain.ActionListAll, nil, true},
		{"admin views any ticket", admin, domain.ActionViewOne, facts, true},
		{"admin edits any ticket", admin, domain.ActionEditOrStatus, facts, true},
		{"admin escalates", admin, domain.ActionEscalate, facts, true},
		{"admin deescalates", admin, domain.ActionDeescalate, facts, true},
		{"admin reassigns", admin, domain.ActionReassign, facts, true},
		{"admin deletes", admin, domain.ActionDelete, facts, true},

		// Listing scopes.
		{"TA lists all", ta, domain.ActionListAll, nil, true},
		{"student cannot list all", student, domain.ActionListAll, nil, false},
		{"TA lists assigned", ta, domain.ActionListAssigned, nil, true},
		{"student cannot list assigned", student, domain.ActionListAssigned, nil, false},
		{"TA lists any user's tickets", ta, domain.ActionListByUser, facts, true},
		{"student lists own tickets", student, domain.ActionListByUser, facts, true},
		{"student cannot list another's tickets", otherStudent, domain.ActionListByUser, facts, false},

		// Single-ticket visibility.
		{"owner views own ticket", student, domain.ActionViewOne, facts, true},
		{"assigned TA views ticket", ta, domain.ActionViewOne, facts, true},
		{"unassigned TA cannot view", otherTA, domain.ActionViewOne, facts, false},
		{"other student cannot view", otherStudent, domain.ActionViewOne, facts, false},
		// Visibility follows the assignment rows, not the role.
		{"non-staff assignee views ticket", otherStudent, domain.ActionViewOne,
			&domain.TicketFacts{StudentID: 10, AssigneeIDs: []int64{11}}, true},

		// Creation is open to every authenticated principal.
		{"student creates", student, domain.ActionCreate, nil, true},
		{"TA creates", ta, domain.ActionCreate, nil, true},

		// Edits and status changes.
		{"owner edits own ticket", student, domain.ActionEditOrStatus, facts, true},
		{"assigned TA edits", ta, domain.ActionEditOrStatus, facts, true},
		{"unassigned TA cannot edit", otherTA, domain.ActionEditOrStatus, facts, false},
		{"other student cannot edit", otherStudent, domain.ActionEditOrStatus, facts, false},

		// Escalation is one-way for TAs.
		{"TA escalates", ta, domain.ActionEscalate, facts, true},
		{"unassigned TA escalates too", otherTA, domain.ActionEscalate, facts, true},
		{"student cannot escalate own ticket", student, domain.ActionEscalate, facts, false},
		{"TA cannot deescalate", ta, domain.ActionDeescalate, facts, false},
		{"student cannot deescalate", student, domain.ActionDeescalate, facts, false},

		// Reassignment and deletion are admin-only.
		{"assigned TA cannot reassign", ta, domain.ActionReassign, facts, false},
		{"owner cannot delete own ticket", student, domain.ActionDelete, facts, false},
		{"assigned TA cannot delete", ta, domain.ActionDelete, facts, false},

		// Messages follow visibility and modification rules.
		{"owner lists messages", student, domain.ActionListMessages, facts, true},
		{"unassigned TA cannot list messages", otherTA, domain.ActionListMessages, facts, false},
		{"owner adds message", student, domain.ActionAddMessage, facts, true},
		{"assigned TA adds message", ta, domain.ActionAddMessage, facts, true},
		{"other student cannot add message", otherStudent, domain.ActionAddMessage, facts, false},

		// Staff directory.
		{"TA lists staff", ta, domain.ActionListStaff, nil, true},
		{"admin lists staff", admin, domain.ActionListStaff, nil, true},
		{"student cannot list staff", student, domain.ActionListStaff, nil, false},

		// Degenerate inputs.
		{"invalid role denied", domain.Principal{ID: 1, Role: "ghost"}, domain.ActionCreate, nil, false},
		{"missing facts denies viewOne", ta, domain.ActionViewOne, nil, false},
		{"unknown action denied", ta, domain.Action("transmogrify"), facts, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Decide(tt.principal, tt.action, tt.facts)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason, "denials must carry a reason")
			}
		})
	}
}
