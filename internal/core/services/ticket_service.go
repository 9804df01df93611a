package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// TicketService implements the ticket lifecycle operations. Every public
// method authorizes the principal before touching state; side effects
// (notifications, event broadcasts) run asynchronously and never fail the
// request.
type TicketService struct {
	tickets        ports.TicketRepository
	assignments    ports.AssignmentRepository
	communications ports.CommunicationRepository
	users          ports.UserRepository
	teams          ports.TeamRepository
	tx             ports.TransactionManager
	policy         ports.AuthorizationPolicy
	notifier       ports.Notifier
	broadcaster    ports.EventBroadcaster
	logger         *slog.Logger
	wg             sync.WaitGroup
}

// NewTicketService creates a ticket service with all its dependencies.
func NewTicketService(
	tickets ports.TicketRepository,
	assignments ports.AssignmentRepository,
	communications ports.CommunicationRepository,
	users ports.UserRepository,
	teams ports.TeamRepository,
	tx ports.TransactionManager,
	policy ports.AuthorizationPolicy,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
	logger *slog.Logger,
) *TicketService {
	return &TicketService{
		tickets:        tickets,
		assignments:    assignments,
		communications: communications,
		users:          users,
		teams:          teams,
		tx:             tx,
		policy:         policy,
		notifier:       notifier,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

var _ ports.TicketService = (*TicketService)(nil)

// Shutdown waits for in-flight notification and broadcast goroutines.
func (s *TicketService) Shutdown() {
	s.wg.Wait()
}

// CreateTicket validates the input, verifies the owning student exists, and
// persists the ticket. When the ticket names a team with an instructor, the
// instructor is auto-assigned in the same transaction.
func (s *TicketService) CreateTicket(ctx context.Context, principal domain.Principal, params domain.TicketParams) (*domain.Ticket, error) {
	if d := s.policy.Decide(principal, domain.ActionCreate, nil); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	ticket, err := domain.NewTicket(params)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, params.StudentID); err != nil {
		return nil, apperrors.ErrStudentNotFound
	}

	var instructorID int64
	if params.TeamID > 0 {
		team, err := s.teams.GetByID(ctx, params.TeamID)
		if err != nil {
			return nil, apperrors.ErrTeamNotFound
		}
		instructorID = team.InstructorID
	}

	var created *domain.Ticket
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		created, err = s.tickets.Create(ctx, ticket)
		if err != nil {
			return err
		}
		if instructorID > 0 {
			return s.assignments.Create(ctx, created.ID, instructorID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	s.broadcast(domain.Event{Type: domain.EventTicketCreated, TicketID: created.ID, Payload: created})
	return created, nil
}

// GetTicket returns a single ticket after an ownership/assignment check.
func (s *TicketService) GetTicket(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	ticket, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionViewOne, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}
	return ticket, nil
}

// ListTickets is the staff-wide listing over the unrestricted scope.
func (s *TicketService) ListTickets(ctx context.Context, principal domain.Principal, params ports.ListTicketsParams) (domain.TicketPage, error) {
	if d := s.policy.Decide(principal, domain.ActionListAll, nil); !d.Allowed {
		return domain.TicketPage{}, apperrors.NewForbiddenError(d.Reason)
	}
	return s.listPage(ctx, domain.ScopeAll(), params)
}

// ListAssignedTickets lists the tickets assigned to the calling TA. The
// assigned set is resolved first; an empty set short-circuits without
// touching ticket storage.
func (s *TicketService) ListAssignedTickets(ctx context.Context, principal domain.Principal, params ports.ListTicketsParams) (domain.TicketPage, error) {
	if d := s.policy.Decide(principal, domain.ActionListAssigned, nil); !d.Allowed {
		return domain.TicketPage{}, apperrors.NewForbiddenError(d.Reason)
	}

	ids, err := s.assignments.ListTicketIDsByUser(ctx, principal.ID)
	if err != nil {
		return domain.TicketPage{}, fmt.Errorf("listing assignments: %w", err)
	}

	scope := domain.ScopeTickets(ids)
	if scope.IsEmpty() {
		return domain.EmptyTicketPage(params.Page), nil
	}
	return s.listPage(ctx, scope, params)
}

// ListUserTickets lists one student's tickets. Students may only list their
// own; staff may list anyone's.
func (s *TicketService) ListUserTickets(ctx context.Context, principal domain.Principal, userID int64, params ports.ListTicketsParams) (domain.TicketPage, error) {
	facts := &domain.TicketFacts{StudentID: userID}
	if d := s.policy.Decide(principal, domain.ActionListByUser, facts); !d.Allowed {
		return domain.TicketPage{}, apperrors.NewForbiddenError(d.Reason)
	}
	return s.listPage(ctx, domain.ScopeStudent(userID), params)
}

// listPage runs the shared listing pipeline: count the filtered set, fetch
// the page window, then compute the summary counters. A summary failure
// degrades the response instead of failing it.
func (s *TicketService) listPage(ctx context.Context, scope domain.TicketScope, params ports.ListTicketsParams) (domain.TicketPage, error) {
	total, err := s.tickets.Count(ctx, scope, params.Filter)
	if err != nil {
		return domain.TicketPage{}, fmt.Errorf("counting tickets: %w", err)
	}

	items, err := s.tickets.List(ctx, ports.ListTicketsRepoParams{
		Scope:  scope,
		Filter: params.Filter,
		Sort:   params.Sort,
		Limit:  params.Page.Size,
		Offset: params.Page.Offset(),
	})
	if err != nil {
		return domain.TicketPage{}, fmt.Errorf("listing tickets: %w", err)
	}
	if items == nil {
		items = []*domain.Ticket{}
	}

	page := domain.TicketPage{
		Tickets:    items,
		Pagination: domain.NewPagination(params.Page, total),
	}

	summary, err := s.tickets.Summarize(ctx, scope, params.Filter)
	if err != nil {
		s.logger.WarnContext(ctx, "ticket summary unavailable, degrading to totals only", "error", err)
		page.Summary = domain.TicketSummary{TotalTickets: total}
		page.SummaryDegraded = true
		return page, nil
	}
	page.Summary = summary
	return page, nil
}

// UpdateTicket applies a general edit to the ticket's descriptive fields.
func (s *TicketService) UpdateTicket(ctx context.Context, principal domain.Principal, ticketID int64, update domain.TicketUpdate) (*domain.Ticket, error) {
	ticket, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionEditOrStatus, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	if err := update.Apply(ticket); err != nil {
		return nil, err
	}

	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("updating ticket %d: %w", ticketID, err)
	}
	return updated, nil
}

// UpdateStatus moves the ticket to the requested status. The owning student
// is notified of the change.
func (s *TicketService) UpdateStatus(ctx context.Context, principal domain.Principal, ticketID int64, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionEditOrStatus, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	if err := ticket.SetStatus(status); err != nil {
		return nil, err
	}

	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("updating ticket %d status: %w", ticketID, err)
	}

	s.notify(ports.NotificationParams{
		RecipientID: updated.StudentID,
		Subject:     "Ticket Status Updated",
		Body:        fmt.Sprintf("The status of your ticket #%d has been updated to %q.", updated.ID, updated.Status),
		TicketID:    updated.ID,
	})
	s.broadcast(domain.Event{Type: domain.EventStatusUpdated, TicketID: updated.ID, Payload: updated})
	return updated, nil
}

// Escalate raises the escalation flag. Escalating an already-escalated
// ticket succeeds without side effects.
func (s *TicketService) Escalate(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	ticket, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionEscalate, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	if !ticket.Escalate() {
		return ticket, nil
	}

	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("escalating ticket %d: %w", ticketID, err)
	}

	s.notify(ports.NotificationParams{
		RecipientID: updated.StudentID,
		Subject:     "Your Ticket Has Been Escalated",
		Body:        fmt.Sprintf("Your ticket #%d has been escalated and will receive priority attention.", updated.ID),
		TicketID:    updated.ID,
	})
	s.broadcast(domain.Event{Type: domain.EventTicketEscalated, TicketID: updated.ID, Payload: updated})
	return updated, nil
}

// Deescalate clears the escalation flag. Like Escalate, it is idempotent.
func (s *TicketService) Deescalate(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	ticket, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionDeescalate, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	if !ticket.Deescalate() {
		return ticket, nil
	}

	updated, err := s.tickets.Update(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("de-escalating ticket %d: %w", ticketID, err)
	}

	s.broadcast(domain.Event{Type: domain.EventTicketDeescalated, TicketID: updated.ID, Payload: updated})
	return updated, nil
}

// Reassign replaces the ticket's assignments with a single new staff
// assignee. The swap runs atomically so the ticket is never left
// unassigned by a partial failure.
func (s *TicketService) Reassign(ctx context.Context, principal domain.Principal, ticketID, assigneeID int64) (*domain.Ticket, error) {
	ticket, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionReassign, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	if !assignee.IsStaff() {
		return nil, apperrors.ErrNotStaffMember
	}

	var updated *domain.Ticket
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.assignments.DeleteByTicket(ctx, ticketID); err != nil {
			return err
		}
		if err := s.assignments.Create(ctx, ticketID, assigneeID); err != nil {
			return err
		}
		ticket.UpdatedAt = time.Now().UTC()
		var txErr error
		updated, txErr = s.tickets.Update(ctx, ticket)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("reassigning ticket %d: %w", ticketID, err)
	}

	s.broadcast(domain.Event{Type: domain.EventTicketReassigned, TicketID: updated.ID, Payload: updated})
	return updated, nil
}

// DeleteTicket removes the ticket and everything hanging off it. The
// cascade deletes assignments first, then communications, then the ticket
// row, all in one transaction.
func (s *TicketService) DeleteTicket(ctx context.Context, principal domain.Principal, ticketID int64) error {
	_, facts, err := s.loadTicketFacts(ctx, ticketID)
	if err != nil {
		return err
	}
	if d := s.policy.Decide(principal, domain.ActionDelete, facts); !d.Allowed {
		return apperrors.NewForbiddenError(d.Reason)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.assignments.DeleteByTicket(ctx, ticketID); err != nil {
			return err
		}
		if err := s.communications.DeleteByTicket(ctx, ticketID); err != nil {
			return err
		}
		return s.tickets.Delete(ctx, ticketID)
	})
	if err != nil {
		return fmt.Errorf("deleting ticket %d: %w", ticketID, err)
	}

	s.broadcast(domain.Event{Type: domain.EventTicketDeleted, TicketID: ticketID})
	return nil
}

// loadTicketFacts fetches a ticket and the assignment facts the policy
// needs. A failed assignment read fails the request; deciding authorization
// against incomplete facts would deny legitimate assignees.
func (s *TicketService) loadTicketFacts(ctx context.Context, ticketID int64) (*domain.Ticket, *domain.TicketFacts, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.ErrTicketNotFound
	}

	facts := &domain.TicketFacts{StudentID: ticket.StudentID}
	rows, err := s.assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading assignments for ticket %d: %w", ticketID, err)
	}
	for _, a := range rows {
		facts.AssigneeIDs = append(facts.AssigneeIDs, a.UserID)
	}
	return ticket, facts, nil
}

// notify dispatches a notification in the background. Delivery is
// best-effort; the notifier logs its own failures.
func (s *TicketService) notify(params ports.NotificationParams) {
	if s.notifier == nil || params.RecipientID <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Notify(ctx, params)
	}()
}

// broadcast pushes a ticket event to connected clients in the background.
func (s *TicketService) broadcast(event domain.Event) {
	if s.broadcaster == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.broadcaster.Broadcast(event); err != nil {
			s.logger.Warn("event broadcast failed", "event", string(event.Type), "ticket_id", event.TicketID, "error", err)
		}
	}()
}
