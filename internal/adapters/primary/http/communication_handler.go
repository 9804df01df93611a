package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campusdesk/capstone-support-backend/internal/adapters/primary/validation"
	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// CommunicationHandler handles the conversation endpoints nested under a
// ticket.
type CommunicationHandler struct {
	communicationService ports.CommunicationService
	errorHandler         *ErrorHandler
	logger               *slog.Logger
}

// NewCommunicationHandler creates a new communication handler
func NewCommunicationHandler(
	communicationService ports.CommunicationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CommunicationHandler {
	return &CommunicationHandler{
		communicationService: communicationService,
		errorHandler:         errorHandler,
		logger:               logger.With("handler", "communication"),
	}
}

// Router sets up a chi Router for the message routes. It expects to be
// mounted under /tickets/{ticketID}.
func (h *CommunicationHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleListMessages)
	r.Post("/", h.HandleAddMessage)
	return r
}

// AddMessageRequest defines the expected JSON body for posting a message
type AddMessageRequest struct {
	Body string `json:"body"`
}

// Validate validates the add message request
func (r *AddMessageRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("body", r.Body).
		MaxLength("body", r.Body, domain.MaxMessageLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CommunicationDTO defines the JSON response for conversation messages.
type CommunicationDTO struct {
	ID         int64  `json:"id"`
	TicketID   int64  `json:"ticket_id"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	Body       string `json:"body"`
	CreatedAt  string `json:"createdAt"`
}

func toCommunicationDTO(comm *domain.Communication) CommunicationDTO {
	return CommunicationDTO{
		ID:         comm.ID,
		TicketID:   comm.TicketID,
		AuthorID:   comm.AuthorID,
		AuthorName: comm.AuthorName,
		Body:       comm.Body,
		CreatedAt:  comm.CreatedAt.Format(time.RFC3339),
	}
}

// HandleListMessages handles GET /tickets/{ticketID}/messages
func (h *CommunicationHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalOrUnauthorized(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := validation.ParseInt64PathParam(chi.URLParam(r, "ticketID"), "ticket ID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	messages, err := h.communicationService.ListMessages(r.Context(), principal, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]CommunicationDTO, 0, len(messages))
	for _, comm := range messages {
		response = append(response, toCommunicationDTO(comm))
	}

	WriteList(w, response)
}

// HandleAddMessage handles POST /tickets/{ticketID}/messages
func (h *CommunicationHandler) HandleAddMessage(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalOrUnauthorized(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := validation.ParseInt64PathParam(chi.URLParam(r, "ticketID"), "ticket ID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[AddMessageRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comm, err := h.communicationService.AddMessage(r.Context(), principal, domain.CommunicationParams{
		TicketID: ticketID,
		AuthorID: principal.ID,
		Body:     req.Body,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("message added",
		"ticket_id", ticketID,
		"user_id", principal.ID,
	)

	WriteCreated(w, toCommunicationDTO(comm))
}
