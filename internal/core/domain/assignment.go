package domain

import "time"

// Assignment links a ticket to one staff member responsible for it. The
// relationship is many-to-many: a ticket may carry several assignment rows
// (shared tickets) and a staff member holds many tickets. UI code that wants
// a single responsible person reads the earliest-created row; the model
// never assumes uniqueness.
type Assignment struct {
	TicketID  int64
	UserID    int64
	CreatedAt time.Time
}
