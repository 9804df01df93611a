package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `t.id, t.student_id, t.team_id, t.sponsor_name, t.section,
	t.issue_type, t.issue_description, t.priority, t.status, t.escalated,
	t.created_at, t.updated_at, u.name AS student_name`

// queryBuilder accumulates WHERE predicates with positional arguments.
type queryBuilder struct {
	conditions []string
	args       []interface{}
}

func (qb *queryBuilder) add(condition string, arg interface{}) {
	qb.args = append(qb.args, arg)
	placeholder := "$" + strconv.Itoa(len(qb.args))
	qb.conditions = append(qb.conditions, strings.Replace(condition, "?", placeholder, 1))
}

func (qb *queryBuilder) addBare(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

func (qb *queryBuilder) whereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(qb.conditions, " AND ")
}

// buildTicketQuery translates the scope and filter into SQL predicates.
// The scope narrows the base set by role; the filters are conjunctive on
// top of it.
func buildTicketQuery(scope domain.TicketScope, filter domain.TicketFilter) *queryBuilder {
	qb := &queryBuilder{}

	if scope.StudentID != nil {
		qb.add("t.student_id = ?", *scope.StudentID)
	}
	if scope.TicketIDs != nil {
		qb.add("t.id = ANY(?)", scope.TicketIDs)
	}

	if filter.Status != nil {
		qb.add("t.status = ?", string(*filter.Status))
	}
	if filter.Escalated != nil {
		qb.add("t.escalated = ?", *filter.Escalated)
	}
	if filter.Priority != "" {
		qb.add("t.priority = ?", filter.Priority)
	}
	if filter.TeamID > 0 {
		qb.add("t.team_id = ?", filter.TeamID)
	}
	if filter.AssignedTo > 0 {
		qb.add("EXISTS (SELECT 1 FROM ticket_assignments a WHERE a.ticket_id = t.id AND a.user_id = ?)", filter.AssignedTo)
	}
	if filter.ExcludeResolved() {
		qb.addBare("t.status <> 'resolved'")
	}

	return qb
}

func orderClause(sort domain.SortOrder) string {
	switch sort {
	case domain.SortOldest:
		return " ORDER BY t.created_at ASC, t.id ASC"
	case domain.SortIDAsc:
		return " ORDER BY t.id ASC"
	case domain.SortIDDesc:
		return " ORDER BY t.id DESC"
	default:
		return " ORDER BY t.created_at DESC, t.id DESC"
	}
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket      domain.Ticket
		teamID      pgtype.Int8
		sponsorName pgtype.Text
		section     pgtype.Text
		issueType   pgtype.Text
		priority    pgtype.Text
		studentName pgtype.Text
	)

	err := row.Scan(
		&ticket.ID,
		&ticket.StudentID,
		&teamID,
		&sponsorName,
		&section,
		&issueType,
		&ticket.Description,
		&priority,
		&ticket.Status,
		&ticket.Escalated,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&studentName,
	)
	if err != nil {
		return nil, err
	}

	ticket.TeamID = teamID.Int64
	ticket.SponsorName = sponsorName.String
	ticket.Section = section.String
	ticket.IssueType = domain.IssueType(issueType.String)
	ticket.Priority = priority.String
	ticket.StudentName = studentName.String

	return &ticket, nil
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func int8OrNull(n int64) pgtype.Int8 {
	return pgtype.Int8{Int64: n, Valid: n > 0}
}

// Create persists a new ticket and returns it with its assigned id.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
		INSERT INTO tickets (student_id, team_id, sponsor_name, section,
			issue_type, issue_description, priority, status, escalated,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	db := GetDBTX(ctx, r.pool)
	created := *ticket
	err := db.QueryRow(ctx, query,
		ticket.StudentID,
		int8OrNull(ticket.TeamID),
		textOrNull(ticket.SponsorName),
		textOrNull(ticket.Section),
		textOrNull(string(ticket.IssueType)),
		ticket.Description,
		textOrNull(ticket.Priority),
		string(ticket.Status),
		ticket.Escalated,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting ticket: %w", err)
	}

	return &created, nil
}

// GetByID retrieves a single ticket by its ID.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN users u ON u.id = t.student_id
		WHERE t.id = $1`

	db := GetDBTX(ctx, r.pool)
	ticket, err := scanTicket(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("fetching ticket %d: %w", id, err)
	}
	return ticket, nil
}

// Update persists the mutable ticket fields.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
		UPDATE tickets
		SET team_id = $2, sponsor_name = $3, section = $4, issue_type = $5,
			issue_description = $6, priority = $7, status = $8,
			escalated = $9, updated_at = $10
		WHERE id = $1`

	db := GetDBTX(ctx, r.pool)
	tag, err := db.Exec(ctx, query,
		ticket.ID,
		int8OrNull(ticket.TeamID),
		textOrNull(ticket.SponsorName),
		textOrNull(ticket.Section),
		textOrNull(string(ticket.IssueType)),
		ticket.Description,
		textOrNull(ticket.Priority),
		string(ticket.Status),
		ticket.Escalated,
		ticket.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("updating ticket %d: %w", ticket.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrTicketNotFound
	}

	return ticket, nil
}

// Delete removes a ticket row. Related rows must already be gone; callers
// run the cascade inside a transaction.
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	db := GetDBTX(ctx, r.pool)
	tag, err := db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ticket %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

// List returns one page of tickets matching the scope and filters.
func (r *TicketRepository) List(ctx context.Context, params ports.ListTicketsRepoParams) ([]*domain.Ticket, error) {
	qb := buildTicketQuery(params.Scope, params.Filter)

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN users u ON u.id = t.student_id` +
		qb.whereClause() +
		orderClause(params.Sort)

	qb.args = append(qb.args, params.Limit)
	query += " LIMIT $" + strconv.Itoa(len(qb.args))
	qb.args = append(qb.args, params.Offset)
	query += " OFFSET $" + strconv.Itoa(len(qb.args))

	db := GetDBTX(ctx, r.pool)
	rows, err := db.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ticket rows: %w", err)
	}

	return tickets, nil
}

// Count returns the size of the filtered set, ignoring the page window.
func (r *TicketRepository) Count(ctx context.Context, scope domain.TicketScope, filter domain.TicketFilter) (int64, error) {
	qb := buildTicketQuery(scope, filter)
	query := `SELECT COUNT(*) FROM tickets t` + qb.whereClause()

	db := GetDBTX(ctx, r.pool)
	var count int64
	if err := db.QueryRow(ctx, query, qb.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tickets: %w", err)
	}
	return count, nil
}

// Summarize computes the four listing counters over the filtered set in a
// single pass.
func (r *TicketRepository) Summarize(ctx context.Context, scope domain.TicketScope, filter domain.TicketFilter) (domain.TicketSummary, error) {
	qb := buildTicketQuery(scope, filter)
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE t.status IN ('new', 'ongoing')),
			COUNT(*) FILTER (WHERE t.status = 'resolved'),
			COUNT(*) FILTER (WHERE t.escalated)
		FROM tickets t` + qb.whereClause()

	db := GetDBTX(ctx, r.pool)
	var summary domain.TicketSummary
	err := db.QueryRow(ctx, query, qb.args...).Scan(
		&summary.TotalTickets,
		&summary.OpenTickets,
		&summary.ClosedTickets,
		&summary.EscalatedTickets,
	)
	if err != nil {
		return domain.TicketSummary{}, fmt.Errorf("summarizing tickets: %w", err)
	}
	return summary, nil
}
