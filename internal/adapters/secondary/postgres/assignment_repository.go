package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// AssignmentRepository is the secondary adapter for ticket assignments.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AssignmentRepository = (*AssignmentRepository)(nil)

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts an assignment row. Duplicate pairs are ignored so
// re-assigning the same staff member is idempotent.
func (r *AssignmentRepository) Create(ctx context.Context, ticketID, userID int64) error {
	const query = `
		INSERT INTO ticket_assignments (ticket_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (ticket_id, user_id) DO NOTHING`

	db := GetDBTX(ctx, r.pool)
	if _, err := db.Exec(ctx, query, ticketID, userID); err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}
	return nil
}

// ListByTicket returns a ticket's assignments ordered by creation, so the
// first row is the primary assignee.
func (r *AssignmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Assignment, error) {
	const query = `
		SELECT ticket_id, user_id, created_at
		FROM ticket_assignments
		WHERE ticket_id = $1
		ORDER BY created_at ASC, user_id ASC`

	db := GetDBTX(ctx, r.pool)
	rows, err := db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments for ticket %d: %w", ticketID, err)
	}
	defer rows.Close()

	assignments := make([]domain.Assignment, 0)
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.TicketID, &a.UserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignment rows: %w", err)
	}

	return assignments, nil
}

// ListTicketIDsByUser returns the ids of every ticket assigned to a user.
func (r *AssignmentRepository) ListTicketIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	const query = `
		SELECT ticket_id
		FROM ticket_assignments
		WHERE user_id = $1
		ORDER BY ticket_id ASC`

	db := GetDBTX(ctx, r.pool)
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing assigned ticket ids for user %d: %w", userID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning ticket id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ticket id rows: %w", err)
	}

	return ids, nil
}

// DeleteByTicket removes every assignment row for a ticket.
func (r *AssignmentRepository) DeleteByTicket(ctx context.Context, ticketID int64) error {
	db := GetDBTX(ctx, r.pool)
	if _, err := db.Exec(ctx, `DELETE FROM ticket_assignments WHERE ticket_id = $1`, ticketID); err != nil {
		return fmt.Errorf("deleting assignments for ticket %d: %w", ticketID, err)
	}
	return nil
}
