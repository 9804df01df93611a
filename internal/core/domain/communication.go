package domain

import (
	"strings"
	"time"

	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
)

const MaxMessageLength = 5000

// Communication is one conversation record attached to a ticket. Rows are
// deleted together with their parent ticket.
type Communication struct {
	ID         int64
	TicketID   int64
	AuthorID   int64
	Body       string
	CreatedAt  time.Time
	AuthorName string
}

// CommunicationParams holds the input for posting a message on a ticket.
type CommunicationParams struct {
	TicketID int64
	AuthorID int64
	Body     string
}

// NewCommunication validates and builds a communication record.
func NewCommunication(params CommunicationParams) (*Communication, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, apperrors.ErrMessageBodyRequired
	}
	if len(body) > MaxMessageLength {
		return nil, apperrors.ErrMessageBodyTooLong
	}

	return &Communication{
		TicketID:  params.TicketID,
		AuthorID:  params.AuthorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}, nil
}
