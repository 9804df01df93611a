package domain

import (
	"strings"
	"time"

	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
)

// TicketStatus represents the lifecycle status of a ticket. The status axis
// is deliberately total: any status may move to any other, including back to
// StatusNew, because tickets get resolved prematurely and reopened.
type TicketStatus string

const (
	StatusNew      TicketStatus = "new"
	StatusOngoing  TicketStatus = "ongoing"
	StatusResolved TicketStatus = "resolved"
)

// IsValid reports whether the status is one of the three known values.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusOngoing, StatusResolved:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}

// ParseStatus parses a status value case-insensitively. The wire-level
// "escalated" shortcut is NOT a status and is rejected here; list endpoints
// translate it into the escalation filter before this point.
func ParseStatus(raw string) (TicketStatus, error) {
	status := TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", apperrors.ErrInvalidStatus
	}
	return status, nil
}

// IssueType classifies what a ticket is about.
type IssueType string

const (
	IssueSponsor        IssueType = "sponsorIssue"
	IssueTeam           IssueType = "teamIssue"
	IssueAssignment     IssueType = "assignmentIssue"
	IssueBug            IssueType = "Bug"
	IssueFeatureRequest IssueType = "FeatureRequest"
	IssueQuestion       IssueType = "Question"
	IssueOther          IssueType = "other"
)

// IsValid reports whether the issue type is a known value.
func (t IssueType) IsValid() bool {
	switch t {
	case IssueSponsor, IssueTeam, IssueAssignment, IssueBug, IssueFeatureRequest, IssueQuestion, IssueOther:
		return true
	}
	return false
}

// IssueTypeValues lists every accepted issue type, for validation messages.
func IssueTypeValues() []string {
	return []string{
		string(IssueSponsor),
		string(IssueTeam),
		string(IssueAssignment),
		string(IssueBug),
		string(IssueFeatureRequest),
		string(IssueQuestion),
		string(IssueOther),
	}
}

const MaxDescriptionLength = 10000

// Ticket is the core domain entity: one reported issue tied to a student and
// their capstone team. Status and the escalation flag are independent axes;
// all six combinations are legal.
type Ticket struct {
	ID          int64
	StudentID   int64
	TeamID      int64
	SponsorName string
	Section     string
	IssueType   IssueType
	Description string
	Priority    string
	Status      TicketStatus
	Escalated   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// StudentName is denormalized for list/detail views; not persisted on
	// the tickets table itself.
	StudentName string
}

// TicketParams holds the caller-supplied fields for creating a ticket.
type TicketParams struct {
	StudentID   int64
	TeamID      int64
	SponsorName string
	Section     string
	IssueType   IssueType
	Description string
	Priority    string
}

// Validate validates ticket creation parameters.
func (p *TicketParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.StudentID <= 0 {
		errs.Add("student_id", "This field is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		errs.Add("issue_description", "This field is required")
	} else if len(p.Description) > MaxDescriptionLength {
		errs.Add("issue_description", "Must be at most 10000 characters")
	}
	if p.IssueType != "" && !p.IssueType.IsValid() {
		errs.Add("issue_type", "Must be one of: "+strings.Join(IssueTypeValues(), ", "))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewTicket creates a valid new ticket. Every ticket starts life as
// {status: new, escalated: false}.
func NewTicket(params TicketParams) (*Ticket, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Ticket{
		StudentID:   params.StudentID,
		TeamID:      params.TeamID,
		SponsorName: params.SponsorName,
		Section:     params.Section,
		IssueType:   params.IssueType,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      StatusNew,
		Escalated:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus moves the ticket to newStatus. There is no forward-only
// constraint and no terminal state; resolved tickets may be reopened.
func (t *Ticket) SetStatus(newStatus TicketStatus) error {
	if !newStatus.IsValid() {
		return apperrors.ErrInvalidStatus
	}
	t.Status = newStatus
	t.touch()
	return nil
}

// Escalate raises the escalation flag. Escalating an already-escalated
// ticket is a no-op success; the return value reports whether anything
// changed.
func (t *Ticket) Escalate() bool {
	if t.Escalated {
		return false
	}
	t.Escalated = true
	t.touch()
	return true
}

// Deescalate clears the escalation flag. Idempotent, symmetric to Escalate.
func (t *Ticket) Deescalate() bool {
	if !t.Escalated {
		return false
	}
	t.Escalated = false
	t.touch()
	return true
}

// IsOpen reports whether the ticket counts as open (new or ongoing).
func (t *Ticket) IsOpen() bool {
	return t.Status == StatusNew || t.Status == StatusOngoing
}

// IsOwnedBy reports whether the given user created the ticket.
func (t *Ticket) IsOwnedBy(userID int64) bool {
	return t.StudentID == userID
}

func (t *Ticket) touch() {
	t.UpdatedAt = time.Now().UTC()
}

// TicketUpdate carries the optional fields of a general edit. Nil pointers
// leave the corresponding field untouched.
type TicketUpdate struct {
	TeamID      *int64
	SponsorName *string
	Section     *string
	IssueType   *IssueType
	Description *string
	Priority    *string
}

// Apply writes the non-nil fields onto the ticket, validating enums.
func (u *TicketUpdate) Apply(t *Ticket) error {
	if u.IssueType != nil && !u.IssueType.IsValid() {
		return apperrors.ErrInvalidIssueType
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		return apperrors.ErrDescriptionRequired
	}

	if u.TeamID != nil {
		t.TeamID = *u.TeamID
	}
	if u.SponsorName != nil {
		t.SponsorName = *u.SponsorName
	}
	if u.Section != nil {
		t.Section = *u.Section
	}
	if u.IssueType != nil {
		t.IssueType = *u.IssueType
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}

	t.touch()
	return nil
}
