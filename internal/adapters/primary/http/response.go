package http

import (
	"encoding/json"
	"net/http"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
)

// PaginationMetadata is the wire shape of a listing's pagination block.
// Totals always describe the filtered set, not the returned page.
type PaginationMetadata struct {
	CurrentPage     int   `json:"currentPage"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// SummaryMetadata is the wire shape of a listing's counter block.
type SummaryMetadata struct {
	TotalTickets     int64 `json:"totalTickets"`
	OpenTickets      int64 `json:"openTickets"`
	ClosedTickets    int64 `json:"closedTickets"`
	EscalatedTickets int64 `json:"escalatedTickets"`
}

// PaginatedResponse wraps one page of results with its metadata.
type PaginatedResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
	Summary    SummaryMetadata    `json:"summary"`
}

// SuccessResponse wraps a successful response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse wraps a list of items (non-paginated)
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header is already sent; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success response
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteCreated writes a created response
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a no content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WritePaginated writes one page of results with pagination and summary
// metadata.
func WritePaginated[T any](w http.ResponseWriter, data []T, pagination domain.Pagination, summary domain.TicketSummary) {
	if data == nil {
		data = []T{}
	}

	response := PaginatedResponse[T]{
		Data: data,
		Pagination: PaginationMetadata{
			CurrentPage:     pagination.CurrentPage,
			ItemsPerPage:    pagination.ItemsPerPage,
			TotalItems:      pagination.TotalItems,
			TotalPages:      pagination.TotalPages,
			HasNextPage:     pagination.HasNextPage,
			HasPreviousPage: pagination.HasPreviousPage,
		},
		Summary: SummaryMetadata{
			TotalTickets:     summary.TotalTickets,
			OpenTickets:      summary.OpenTickets,
			ClosedTickets:    summary.ClosedTickets,
			EscalatedTickets: summary.EscalatedTickets,
		},
	}

	WriteJSON(w, http.StatusOK, response)
}

// WriteList writes a simple list response
func WriteList[T any](w http.ResponseWriter, data []T) {
	if data == nil {
		data = []T{}
	}

	response := ListResponse[T]{
		Data:  data,
		Count: len(data),
	}

	WriteJSON(w, http.StatusOK, response)
}
