package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campusdesk/capstone-support-backend/internal/adapters/primary/validation"
	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService        ports.TicketService
	communicationHandler *CommunicationHandler
	errorHandler         *ErrorHandler
	logger               *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	communicationHandler *CommunicationHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService:        ticketService,
		communicationHandler: communicationHandler,
		errorHandler:         errorHandler,
		logger:               logger.With("handler", "ticket"),
	}
}

// Router sets up a new chi Router for all ticket-related routes.
func (h *TicketHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)
	r.Get("/assigned-to-me", h.HandleListAssignedTickets)
	r.Get("/user/{userID}", h.HandleListUserTickets)

	// Routes for a specific ticket
	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Patch("/", h.HandleUpdateTicket)
		r.Delete("/", h.HandleDeleteTicket)
		r.Patch("/status", h.HandleUpdateTicketStatus)
		r.Patch("/assignee", h.HandleReassignTicket)
		r.Post("/escalate", h.HandleEscalateTicket)
		r.Post("/deescalate", h.HandleDeescalateTicket)

		if h.communicationHandler != nil {
			r.Mount("/messages", h.communicationHandler.Router())
		}
	})
}

// --- Request/Response DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	StudentID   int64  `json:"student_id"`
	TeamID      int64  `json:"team_id"`
	SponsorName string `json:"sponsor_name"`
	Section     string `json:"section"`
	IssueType   string `json:"issue_type"`
	Description string `json:"issue_description"`
	Priority    string `json:"priority"`
}

// Validate validates the create ticket request
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.PositiveID("student_id", r.StudentID)

	v.Required("issue_description", r.Description).
		MaxLength("issue_description", r.Description, domain.MaxDescriptionLength)

	v.OneOf("issue_type", r.IssueType, domain.IssueTypeValues())

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateTicketRequest defines the expected JSON body for a general edit.
// Absent fields are left untouched.
type UpdateTicketRequest struct {
	TeamID      *int64  `json:"team_id"`
	SponsorName *string `json:"sponsor_name"`
	Section     *string `json:"section"`
	IssueType   *string `json:"issue_type"`
	Description *string `json:"issue_description"`
	Priority    *string `json:"priority"`
}

// Validate validates the update ticket request
func (r *UpdateTicketRequest) Validate() error {
	v := validation.NewValidator()

	if r.IssueType != nil {
		v.OneOf("issue_type", *r.IssueType, domain.IssueTypeValues())
	}
	if r.Description != nil {
		v.Required("issue_description", *r.Description).
			MaxLength("issue_description", *r.Description, domain.MaxDescriptionLength)
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateStatusRequest defines the expected JSON body for status updates
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the update status request
func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("status", r.Status)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ReassignTicketRequest defines the expected JSON body for reassignment
type ReassignTicketRequest struct {
	AssigneeID int64 `json:"assignee_id"`
}

// Validate validates the reassign ticket request
func (r *ReassignTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.PositiveID("assignee_id", r.AssigneeID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID          int64  `json:"id"`
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	TeamID      int64  `json:"team_id,omitempty"`
	SponsorName string `json:"sponsor_name,omitempty"`
	Section     string `json:"section,omitempty"`
	IssueType   string `json:"issue_type,omitempty"`
	Description string `json:"issue_description"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status"`
	Escalated   bool   `json:"escalated"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	return TicketDTO{
		ID:          ticket.ID,
		StudentID:   ticket.StudentID,
		StudentName: ticket.StudentName,
		TeamID:      ticket.TeamID,
		SponsorName: ticket.SponsorName,
		Section:     ticket.Section,
		IssueType:   string(ticket.IssueType),
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      string(ticket.Status),
		Escalated:   ticket.Escalated,
		CreatedAt:   ticket.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   ticket.UpdatedAt.Format(time.RFC3339),
	}
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	response := make([]TicketDTO, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, toTicketDTO(ticket))
	}
	return response
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	params, err := h.parseListParams(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	params.Filter.TeamID = validation.ParseInt64QueryParam(r, "team_id")
	params.Filter.AssignedTo = validation.ParseInt64QueryParam(r, "assigned_to")

	page, err := h.ticketService.ListTickets(r.Context(), principal, params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, toTicketDTOs(page.Tickets), page.Pagination, page.Summary)
}

// HandleListAssignedTickets handles GET /tickets/assigned-to-me
func (h *TicketHandler) HandleListAssignedTickets(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	params, err := h.parseListParams(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	page, err := h.ticketService.ListAssignedTickets(r.Context(), principal, params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, toTicketDTOs(page.Tickets), page.Pagination, page.Summary)
}

// HandleListUserTickets handles GET /tickets/user/{userID}
func (h *TicketHandler) HandleListUserTickets(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	userID, err := validation.ParseInt64PathParam(chi.URLParam(r, "userID"), "user ID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params, err := h.parseListParams(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if escalated := validation.ParseOptionalBoolQueryParam(r, "escalated"); escalated != nil {
		params.Filter.Escalated = escalated
	}

	page, err := h.ticketService.ListUserTickets(r.Context(), principal, userID, params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, toTicketDTOs(page.Tickets), page.Pagination, page.Summary)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := domain.TicketParams{
		StudentID:   req.StudentID,
		TeamID:      req.TeamID,
		SponsorName: req.SponsorName,
		Section:     req.Section,
		IssueType:   domain.IssueType(req.IssueType),
		Description: req.Description,
		Priority:    req.Priority,
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), principal, params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket created",
		"ticket_id", ticket.ID,
		"user_id", principal.ID,
	)

	WriteCreated(w, toTicketDTO(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), principal, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleUpdateTicket handles PATCH /tickets/{ticketID}
func (h *TicketHandler) HandleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	update := domain.TicketUpdate{
		TeamID:      req.TeamID,
		SponsorName: req.SponsorName,
		Section:     req.Section,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.IssueType != nil {
		issueType := domain.IssueType(*req.IssueType)
		update.IssueType = &issueType
	}

	ticket, err := h.ticketService.UpdateTicket(r.Context(), principal, ticketID, update)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleUpdateTicketStatus handles PATCH /tickets/{ticketID}/status
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.UpdateStatus(r.Context(), principal, ticketID, status)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket status updated",
		"ticket_id", ticketID,
		"new_status", string(status),
		"user_id", principal.ID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleEscalateTicket handles POST /tickets/{ticketID}/escalate
func (h *TicketHandler) HandleEscalateTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.Escalate(r.Context(), principal, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket escalated",
		"ticket_id", ticketID,
		"user_id", principal.ID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleDeescalateTicket handles POST /tickets/{ticketID}/deescalate
func (h *TicketHandler) HandleDeescalateTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.Deescalate(r.Context(), principal, ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket de-escalated",
		"ticket_id", ticketID,
		"user_id", principal.ID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleReassignTicket handles PATCH /tickets/{ticketID}/assignee
func (h *TicketHandler) HandleReassignTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ReassignTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.Reassign(r.Context(), principal, ticketID, req.AssigneeID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket reassigned",
		"ticket_id", ticketID,
		"assignee_id", req.AssigneeID,
		"user_id", principal.ID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleDeleteTicket handles DELETE /tickets/{ticketID}
func (h *TicketHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.getPrincipal(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.ticketService.DeleteTicket(r.Context(), principal, ticketID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket deleted",
		"ticket_id", ticketID,
		"user_id", principal.ID,
	)

	WriteNoContent(w)
}

// --- Helpers ---

// getPrincipal extracts the authenticated principal from the request
// context, writing a 401 if it is missing.
func (h *TicketHandler) getPrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	return PrincipalOrUnauthorized(w, r, h.errorHandler)
}

func (h *TicketHandler) parseTicketID(r *http.Request) (int64, error) {
	return validation.ParseInt64PathParam(chi.URLParam(r, "ticketID"), "ticket ID")
}

// parseListParams reads the shared listing query parameters: status (with
// the "escalated" shortcut), priority, hideResolved, sort, page and limit.
func (h *TicketHandler) parseListParams(r *http.Request) (ports.ListTicketsParams, error) {
	params := ports.ListTicketsParams{
		Sort: domain.ParseSort(r.URL.Query().Get("sort")),
		Page: validation.ParsePage(r),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if err := params.Filter.ApplyStatusParam(status); err != nil {
			return params, apperrors.NewBadRequestError(err, "Invalid status filter")
		}
	}

	if priority := validation.ParseStringQueryParam(r, "priority"); priority != nil {
		params.Filter.Priority = *priority
	}

	params.Filter.HideResolved = validation.ParseBoolQueryParam(r, "hideResolved", false)

	return params, nil
}
