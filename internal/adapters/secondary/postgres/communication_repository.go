package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// CommunicationRepository is the secondary adapter for ticket conversation
// records.
type CommunicationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.CommunicationRepository = (*CommunicationRepository)(nil)

// NewCommunicationRepository creates a new communication repository.
func NewCommunicationRepository(pool *pgxpool.Pool) *CommunicationRepository {
	return &CommunicationRepository{pool: pool}
}

// Create inserts a message and returns it with its assigned id.
func (r *CommunicationRepository) Create(ctx context.Context, comm *domain.Communication) (*domain.Communication, error) {
	const query = `
		INSERT INTO communications (ticket_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	db := GetDBTX(ctx, r.pool)
	created := *comm
	err := db.QueryRow(ctx, query,
		comm.TicketID,
		comm.AuthorID,
		comm.Body,
		comm.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting communication: %w", err)
	}

	return &created, nil
}

// ListByTicket returns a ticket's conversation, oldest first.
func (r *CommunicationRepository) ListByTicket(ctx context.Context, ticketID int64) ([]*domain.Communication, error) {
	const query = `
		SELECT c.id, c.ticket_id, c.author_id, c.body, c.created_at, u.name AS author_name
		FROM communications c
		JOIN users u ON u.id = c.author_id
		WHERE c.ticket_id = $1
		ORDER BY c.created_at ASC, c.id ASC`

	db := GetDBTX(ctx, r.pool)
	rows, err := db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing communications for ticket %d: %w", ticketID, err)
	}
	defer rows.Close()

	messages := make([]*domain.Communication, 0)
	for rows.Next() {
		var (
			comm       domain.Communication
			authorName pgtype.Text
		)
		if err := rows.Scan(&comm.ID, &comm.TicketID, &comm.AuthorID, &comm.Body, &comm.CreatedAt, &authorName); err != nil {
			return nil, fmt.Errorf("scanning communication row: %w", err)
		}
		comm.AuthorName = authorName.String
		messages = append(messages, &comm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating communication rows: %w", err)
	}

	return messages, nil
}

// DeleteByTicket removes every message attached to a ticket.
func (r *CommunicationRepository) DeleteByTicket(ctx context.Context, ticketID int64) error {
	db := GetDBTX(ctx, r.pool)
	if _, err := db.Exec(ctx, `DELETE FROM communications WHERE ticket_id = $1`, ticketID); err != nil {
		return fmt.Errorf("deleting communications for ticket %d: %w", ticketID, err)
	}
	return nil
}
