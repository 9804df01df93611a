package domain

// EventType identifies a ticket lifecycle event broadcast to connected
// dashboards.
type EventType string

const (
	EventTicketCreated     EventType = "ticket.created"
	EventStatusUpdated     EventType = "ticket.status_updated"
	EventTicketEscalated   EventType = "ticket.escalated"
	EventTicketDeescalated EventType = "ticket.deescalated"
	EventTicketReassigned  EventType = "ticket.reassigned"
	EventTicketDeleted     EventType = "ticket.deleted"
	EventMessageAdded      EventType = "ticket.message_added"
)

// Event is a real-time notification about a ticket. Payload is whatever the
// subscribers need to render the change, typically the updated ticket.
type Event struct {
	Type     EventType `json:"type"`
	TicketID int64     `json:"ticketId"`
	Payload  any       `json:"payload,omitempty"`
}
