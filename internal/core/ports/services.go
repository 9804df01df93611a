package ports

import (
	"context"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
)

// AuthorizationPolicy is the port for access-control decisions. Decide is a
// pure function of its inputs: callers fetch the ticket facts first, the
// policy never touches storage.
type AuthorizationPolicy interface {
	Decide(principal domain.Principal, action domain.Action, facts *domain.TicketFacts) domain.Decision
}

// ListTicketsParams is the caller-facing input for a ticket listing.
type ListTicketsParams struct {
	Filter domain.TicketFilter
	Sort   domain.SortOrder
	Page   domain.Page
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, principal domain.Principal, params domain.TicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error)
	ListTickets(ctx context.Context, principal domain.Principal, params ListTicketsParams) (domain.TicketPage, error)
	ListAssignedTickets(ctx context.Context, principal domain.Principal, params ListTicketsParams) (domain.TicketPage, error)
	ListUserTickets(ctx context.Context, principal domain.Principal, userID int64, params ListTicketsParams) (domain.TicketPage, error)
	UpdateTicket(ctx context.Context, principal domain.Principal, ticketID int64, update domain.TicketUpdate) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, principal domain.Principal, ticketID int64, status domain.TicketStatus) (*domain.Ticket, error)
	Escalate(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error)
	Deescalate(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error)
	Reassign(ctx context.Context, principal domain.Principal, ticketID, assigneeID int64) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, principal domain.Principal, ticketID int64) error
	Shutdown()
}

// CommunicationService defines the port for ticket conversations.
type CommunicationService interface {
	AddMessage(ctx context.Context, principal domain.Principal, params domain.CommunicationParams) (*domain.Communication, error)
	ListMessages(ctx context.Context, principal domain.Principal, ticketID int64) ([]*domain.Communication, error)
}

// AuthService defines the login boundary that produces the identity the
// engine later consumes as a Principal.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// AssigneeService defines the port for the staff roster.
type AssigneeService interface {
	ListStaff(ctx context.Context, principal domain.Principal) ([]*domain.User, error)
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientID int64
	Subject     string
	Body        string
	TicketID    int64
}

// Notifier defines the port for sending asynchronous notifications.
// Dispatch is best-effort: failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// EventBroadcaster defines the port for real-time ticket events.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
