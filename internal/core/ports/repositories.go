package ports

import (
	"context"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
)

// ListTicketsRepoParams is the storage-level query for a ticket listing:
// the role-determined base scope, the conjunctive filters, the sort order
// and the page window.
type ListTicketsRepoParams struct {
	Scope  domain.TicketScope
	Filter domain.TicketFilter
	Sort   domain.SortOrder
	Limit  int
	Offset int
}

// TicketRepository is the port for durable ticket storage. The engine never
// caches tickets across requests; every operation re-reads current state.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListTicketsRepoParams) ([]*domain.Ticket, error)
	// Count returns the size of the filtered set, ignoring the page window.
	Count(ctx context.Context, scope domain.TicketScope, filter domain.TicketFilter) (int64, error)
	// Summarize computes the four summary counters over the filtered set.
	Summarize(ctx context.Context, scope domain.TicketScope, filter domain.TicketFilter) (domain.TicketSummary, error)
}

// AssignmentRepository is the port for the ticket-to-staff relationship.
// Listings are ordered by creation so the earliest row is the primary
// assignee.
type AssignmentRepository interface {
	Create(ctx context.Context, ticketID, userID int64) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Assignment, error)
	ListTicketIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	DeleteByTicket(ctx context.Context, ticketID int64) error
}

// CommunicationRepository is the port for ticket conversation records.
type CommunicationRepository interface {
	Create(ctx context.Context, comm *domain.Communication) (*domain.Communication, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]*domain.Communication, error)
	DeleteByTicket(ctx context.Context, ticketID int64) error
}

// UserRepository is the port for account lookups the engine needs: owner
// existence checks, notification recipients and the staff roster.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListStaff(ctx context.Context) ([]*domain.User, error)
}

// TeamRepository is the port for team lookups, used to auto-assign new
// tickets to the team's instructor.
type TeamRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Team, error)
}

// TransactionManager defines the port for running atomic multi-row
// operations (delete cascade, reassignment's delete+insert).
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
