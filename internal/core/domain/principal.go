package domain

// Role is the caller's role as carried in the verified token. Exactly three
// roles exist; there is no role hierarchy beyond what the authorization
// rules spell out.
type Role string

const (
	RoleStudent Role = "student"
	RoleTA      Role = "TA"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the three known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTA, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may hold ticket assignments.
func (r Role) IsStaff() bool {
	return r == RoleTA || r == RoleAdmin
}

// Principal is the authenticated caller's identity, derived from a verified
// token on every request. It is never persisted by the engine and is always
// threaded explicitly as an argument, never read from ambient state.
type Principal struct {
	ID   int64
	Role Role
}

// Action enumerates the intents the authorization policy knows how to gate.
type Action string

const (
	ActionListAll      Action = "listAll"
	ActionListAssigned Action = "listAssignedToMe"
	ActionListByUser   Action = "listByUser"
	ActionViewOne      Action = "viewOne"
	ActionCreate       Action = "create"
	ActionEditOrStatus Action = "editOrStatusChange"
	ActionEscalate     Action = "escalate"
	ActionDeescalate   Action = "deescalate"
	ActionReassign     Action = "reassign"
	ActionDelete       Action = "delete"
	ActionListStaff    Action = "listStaff"
	ActionAddMessage   Action = "addMessage"
	ActionListMessages Action = "listMessages"
)

// TicketFacts carries the ownership and assignment facts a policy decision
// may need. Callers fetch these from storage before asking for a decision;
// the policy itself performs no I/O.
type TicketFacts struct {
	StudentID   int64
	AssigneeIDs []int64
}

// HasAssignee reports whether userID holds an assignment row on the ticket.
func (f *TicketFacts) HasAssignee(userID int64) bool {
	if f == nil {
		return false
	}
	for _, id := range f.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PrimaryAssignee returns the ticket's primary assignee under the
// earliest-created policy: assignment lists are ordered by creation, so the
// first entry wins. ok is false when the ticket has no assignees.
func (f *TicketFacts) PrimaryAssignee() (int64, bool) {
	if f == nil || len(f.AssigneeIDs) == 0 {
		return 0, false
	}
	return f.AssigneeIDs[0], true
}

// Decision is the outcome of an authorization check. A denial always
// carries a human-readable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
