package http

import (
	"log/slog"
	"net/http"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// AssigneeHandler serves the staff roster used to populate assignment
// dropdowns.
type AssigneeHandler struct {
	assigneeService ports.AssigneeService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewAssigneeHandler creates a new assignee handler
func NewAssigneeHandler(
	assigneeService ports.AssigneeService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AssigneeHandler {
	return &AssigneeHandler{
		assigneeService: assigneeService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "assignee"),
	}
}

// UserDTO defines the JSON response for user accounts.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

// HandleListStaff handles GET /staff
func (h *AssigneeHandler) HandleListStaff(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalOrUnauthorized(w, r, h.errorHandler)
	if !ok {
		return
	}

	staff, err := h.assigneeService.ListStaff(r.Context(), principal)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]UserDTO, 0, len(staff))
	for _, user := range staff {
		response = append(response, toUserDTO(user))
	}

	WriteList(w, response)
}
