package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// CommunicationService manages the conversation attached to a ticket.
// Posting requires the same access as editing the ticket; reading requires
// the same access as viewing it.
type CommunicationService struct {
	communications ports.CommunicationRepository
	tickets        ports.TicketRepository
	assignments    ports.AssignmentRepository
	policy         ports.AuthorizationPolicy
	broadcaster    ports.EventBroadcaster
	logger         *slog.Logger
}

// NewCommunicationService creates a communication service.
func NewCommunicationService(
	communications ports.CommunicationRepository,
	tickets ports.TicketRepository,
	assignments ports.AssignmentRepository,
	policy ports.AuthorizationPolicy,
	broadcaster ports.EventBroadcaster,
	logger *slog.Logger,
) *CommunicationService {
	return &CommunicationService{
		communications: communications,
		tickets:        tickets,
		assignments:    assignments,
		policy:         policy,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

var _ ports.CommunicationService = (*CommunicationService)(nil)

// AddMessage posts a message to a ticket's conversation.
func (s *CommunicationService) AddMessage(ctx context.Context, principal domain.Principal, params domain.CommunicationParams) (*domain.Communication, error) {
	facts, err := s.ticketFacts(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionAddMessage, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	params.AuthorID = principal.ID
	comm, err := domain.NewCommunication(params)
	if err != nil {
		return nil, err
	}

	created, err := s.communications.Create(ctx, comm)
	if err != nil {
		return nil, fmt.Errorf("adding message to ticket %d: %w", params.TicketID, err)
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(domain.Event{
			Type:     domain.EventMessageAdded,
			TicketID: created.TicketID,
			Payload:  created,
		}); err != nil {
			s.logger.Warn("event broadcast failed", "event", string(domain.EventMessageAdded), "ticket_id", created.TicketID, "error", err)
		}
	}
	return created, nil
}

// ListMessages returns a ticket's conversation, oldest first.
func (s *CommunicationService) ListMessages(ctx context.Context, principal domain.Principal, ticketID int64) ([]*domain.Communication, error) {
	facts, err := s.ticketFacts(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if d := s.policy.Decide(principal, domain.ActionListMessages, facts); !d.Allowed {
		return nil, apperrors.NewForbiddenError(d.Reason)
	}

	messages, err := s.communications.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing messages for ticket %d: %w", ticketID, err)
	}
	if messages == nil {
		messages = []*domain.Communication{}
	}
	return messages, nil
}

func (s *CommunicationService) ticketFacts(ctx context.Context, ticketID int64) (*domain.TicketFacts, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.ErrTicketNotFound
	}

	facts := &domain.TicketFacts{StudentID: ticket.StudentID}
	rows, err := s.assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("loading assignments for ticket %d: %w", ticketID, err)
	}
	for _, a := range rows {
		facts.AssigneeIDs = append(facts.AssigneeIDs, a.UserID)
	}
	return facts, nil
}
