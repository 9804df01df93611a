package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/campusdesk/capstone-support-backend/internal/adapters/primary/http/middleware"
	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// stubTicketService records the inputs it receives and returns canned
// results, letting handler tests assert the boundary translation.
type stubTicketService struct {
	lastPrincipal domain.Principal
	lastParams    ports.ListTicketsParams
	lastUserID    int64
	lastTicketID  int64
	lastStatus    domain.TicketStatus
	lastAssignee  int64

	ticket *domain.Ticket
	page   domain.TicketPage
	err    error
}

func (s *stubTicketService) CreateTicket(_ context.Context, principal domain.Principal, params domain.TicketParams) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) GetTicket(_ context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) ListTickets(_ context.Context, principal domain.Principal, params ports.ListTicketsParams) (domain.TicketPage, error) {
	s.lastPrincipal = principal
	s.lastParams = params
	return s.page, s.err
}

func (s *stubTicketService) ListAssignedTickets(_ context.Context, principal domain.Principal, params ports.ListTicketsParams) (domain.TicketPage, error) {
	s.lastPrincipal = principal
	s.lastParams = params
	return s.page, s.err
}

func (s *stubTicketService) ListUserTickets(_ context.Context, principal domain.Principal, userID int64, params ports.ListTicketsParams) (domain.TicketPage, error) {
	s.lastPrincipal = principal
	s.lastUserID = userID
	s.lastParams = params
	return s.page, s.err
}

func (s *stubTicketService) UpdateTicket(_ context.Context, principal domain.Principal, ticketID int64, _ domain.TicketUpdate) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) UpdateStatus(_ context.Context, principal domain.Principal, ticketID int64, status domain.TicketStatus) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	s.lastStatus = status
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) Escalate(_ context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) Deescalate(_ context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) Reassign(_ context.Context, principal domain.Principal, ticketID, assigneeID int64) (*domain.Ticket, error) {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	s.lastAssignee = assigneeID
	if s.err != nil {
		return nil, s.err
	}
	return s.ticket, nil
}

func (s *stubTicketService) DeleteTicket(_ context.Context, principal domain.Principal, ticketID int64) error {
	s.lastPrincipal = principal
	s.lastTicketID = ticketID
	return s.err
}

func (s *stubTicketService) Shutdown() {}

var _ ports.TicketService = (*stubTicketService)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTicketRouter(svc ports.TicketService) http.Handler {
	handler := NewTicketHandler(svc, nil, NewErrorHandler(testLogger()), testLogger())
	return handler.Router()
}

// serveAs dispatches the request with the given principal already in the
// request context, the way JWTMiddleware would leave it.
func serveAs(router http.Handler, req *http.Request, principal domain.Principal) *httptest.ResponseRecorder {
	ctx := context.WithValue(req.Context(), mw.PrincipalKey, principal)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req.WithContext(ctx))
	return recorder
}

var (
	studentPrincipal = domain.Principal{ID: 10, Role: domain.RoleStudent}
	taPrincipal      = domain.Principal{ID: 20, Role: domain.RoleTA}
	adminPrincipal   = domain.Principal{ID: 30, Role: domain.RoleAdmin}
)

func TestTicketHandler_ListTickets_FilterParsing(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		verify func(t *testing.T, params ports.ListTicketsParams)
	}{
		{
			name:  "defaults",
			query: "",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Equal(t, domain.SortNewest, params.Sort)
				assert.Equal(t, 1, params.Page.Number)
				assert.Equal(t, 10, params.Page.Size)
				assert.Nil(t, params.Filter.Status)
				assert.Nil(t, params.Filter.Escalated)
				assert.False(t, params.Filter.HideResolved)
			},
		},
		{
			name:  "status filter",
			query: "?status=Ongoing",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				require.NotNil(t, params.Filter.Status)
				assert.Equal(t, domain.StatusOngoing, *params.Filter.Status)
				assert.Nil(t, params.Filter.Escalated)
			},
		},
		{
			name:  "escalated shortcut flips the escalation predicate",
			query: "?status=escalated",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Nil(t, params.Filter.Status)
				require.NotNil(t, params.Filter.Escalated)
				assert.True(t, *params.Filter.Escalated)
			},
		},
		{
			name:  "hideResolved and priority",
			query: "?hideResolved=true&priority=high",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.True(t, params.Filter.HideResolved)
				assert.Equal(t, "high", params.Filter.Priority)
			},
		},
		{
			name:  "team and assignee filters",
			query: "?team_id=3&assigned_to=5",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Equal(t, int64(3), params.Filter.TeamID)
				assert.Equal(t, int64(5), params.Filter.AssignedTo)
			},
		},
		{
			name:  "malformed team and assignee filters are ignored",
			query: "?team_id=abc&assigned_to=-1",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Zero(t, params.Filter.TeamID)
				assert.Zero(t, params.Filter.AssignedTo)
			},
		},
		{
			name:  "pagination and sort",
			query: "?page=3&limit=25&sort=oldest",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Equal(t, 3, params.Page.Number)
				assert.Equal(t, 25, params.Page.Size)
				assert.Equal(t, domain.SortOldest, params.Sort)
			},
		},
		{
			name:  "limit is clamped",
			query: "?limit=5000",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Equal(t, 100, params.Page.Size)
			},
		},
		{
			name:  "unknown sort falls back to newest",
			query: "?sort=alphabetical",
			verify: func(t *testing.T, params ports.ListTicketsParams) {
				assert.Equal(t, domain.SortNewest, params.Sort)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubTicketService{page: domain.EmptyTicketPage(domain.Page{Number: 1, Size: 10})}
			router := newTicketRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			recorder := serveAs(router, req, taPrincipal)

			require.Equal(t, http.StatusOK, recorder.Code)
			tt.verify(t, svc.lastParams)
		})
	}
}

func TestTicketHandler_ListTickets_InvalidStatusFilter(t *testing.T) {
	svc := &stubTicketService{}
	router := newTicketRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/?status=bogus", nil)
	recorder := serveAs(router, req, taPrincipal)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTicketHandler_ListTickets_ResponseEnvelope(t *testing.T) {
	svc := &stubTicketService{
		page: domain.TicketPage{
			Tickets: []*domain.Ticket{
				{ID: 2, StudentID: 10, Status: domain.StatusNew},
				{ID: 1, StudentID: 10, Status: domain.StatusResolved, Escalated: true},
			},
			Pagination: domain.NewPagination(domain.Page{Number: 1, Size: 10}, 12),
			Summary:    domain.TicketSummary{TotalTickets: 12, OpenTickets: 8, ClosedTickets: 4, EscalatedTickets: 3},
		},
	}
	router := newTicketRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := serveAs(router, req, taPrincipal)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response PaginatedResponse[TicketDTO]
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))

	assert.Len(t, response.Data, 2)
	assert.Equal(t, int64(12), response.Pagination.TotalItems)
	assert.Equal(t, 2, response.Pagination.TotalPages)
	assert.True(t, response.Pagination.HasNextPage)
	assert.False(t, response.Pagination.HasPreviousPage)
	assert.Equal(t, int64(8), response.Summary.OpenTickets)
	assert.Equal(t, int64(3), response.Summary.EscalatedTickets)
	assert.True(t, response.Data[1].Escalated)
}

func TestTicketHandler_ListUserTickets(t *testing.T) {
	t.Run("passes the user id through", func(t *testing.T) {
		svc := &stubTicketService{page: domain.EmptyTicketPage(domain.Page{Number: 1, Size: 10})}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/user/42", nil)
		recorder := serveAs(router, req, taPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, int64(42), svc.lastUserID)
	})

	t.Run("rejects a malformed user id", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/user/abc", nil)
		recorder := serveAs(router, req, taPrincipal)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("escalated filter", func(t *testing.T) {
		svc := &stubTicketService{page: domain.EmptyTicketPage(domain.Page{Number: 1, Size: 10})}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/user/42?escalated=true", nil)
		recorder := serveAs(router, req, taPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, svc.lastParams.Filter.Escalated)
		assert.True(t, *svc.lastParams.Filter.Escalated)
	})

	t.Run("escalated=false is passed through, not dropped", func(t *testing.T) {
		svc := &stubTicketService{page: domain.EmptyTicketPage(domain.Page{Number: 1, Size: 10})}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/user/42?escalated=false", nil)
		recorder := serveAs(router, req, taPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, svc.lastParams.Filter.Escalated)
		assert.False(t, *svc.lastParams.Filter.Escalated)
	})
}

func TestTicketHandler_CreateTicket(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		svc := &stubTicketService{
			ticket: &domain.Ticket{ID: 1, StudentID: 10, Status: domain.StatusNew},
		}
		router := newTicketRouter(svc)

		body := `{"student_id": 10, "team_id": 5, "issue_type": "sponsorIssue", "issue_description": "Sponsor unreachable"}`
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		recorder := serveAs(router, req, studentPrincipal)

		require.Equal(t, http.StatusCreated, recorder.Code)

		var dto TicketDTO
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&dto))
		assert.Equal(t, int64(1), dto.ID)
		assert.Equal(t, "new", dto.Status)
		assert.Equal(t, studentPrincipal, svc.lastPrincipal)
	})

	t.Run("missing description fails validation", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		body := `{"student_id": 10}`
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		recorder := serveAs(router, req, studentPrincipal)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		var response ValidationErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Contains(t, response.Fields, "issue_description")
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
		recorder := serveAs(router, req, studentPrincipal)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestTicketHandler_UpdateStatus(t *testing.T) {
	t.Run("valid status", func(t *testing.T) {
		svc := &stubTicketService{
			ticket: &domain.Ticket{ID: 1, StudentID: 10, Status: domain.StatusResolved},
		}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/1/status", bytes.NewBufferString(`{"status": "Resolved"}`))
		recorder := serveAs(router, req, taPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, domain.StatusResolved, svc.lastStatus)
	})

	t.Run("escalated is not a settable status", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/1/status", bytes.NewBufferString(`{"status": "escalated"}`))
		recorder := serveAs(router, req, taPrincipal)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		svc := &stubTicketService{err: apperrors.NewForbiddenError("not yours")}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/1/status", bytes.NewBufferString(`{"status": "resolved"}`))
		recorder := serveAs(router, req, studentPrincipal)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestTicketHandler_GetTicket(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &stubTicketService{ticket: &domain.Ticket{ID: 7, StudentID: 10, Status: domain.StatusNew}}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/7", nil)
		recorder := serveAs(router, req, studentPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, int64(7), svc.lastTicketID)
	})

	t.Run("missing ticket maps to 404", func(t *testing.T) {
		svc := &stubTicketService{err: apperrors.ErrTicketNotFound}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/7", nil)
		recorder := serveAs(router, req, studentPrincipal)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("malformed id maps to 400", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/zero", nil)
		recorder := serveAs(router, req, studentPrincipal)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestTicketHandler_Reassign(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		svc := &stubTicketService{ticket: &domain.Ticket{ID: 1, StudentID: 10}}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/1/assignee", bytes.NewBufferString(`{"assignee_id": 21}`))
		recorder := serveAs(router, req, adminPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, int64(21), svc.lastAssignee)
	})

	t.Run("missing assignee id fails validation", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/1/assignee", bytes.NewBufferString(`{}`))
		recorder := serveAs(router, req, adminPrincipal)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})

	t.Run("non-staff target maps to 400", func(t *testing.T) {
		svc := &stubTicketService{err: apperrors.ErrNotStaffMember}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/1/assignee", bytes.NewBufferString(`{"assignee_id": 11}`))
		recorder := serveAs(router, req, adminPrincipal)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestTicketHandler_EscalationRoutes(t *testing.T) {
	t.Run("escalate", func(t *testing.T) {
		svc := &stubTicketService{ticket: &domain.Ticket{ID: 1, StudentID: 10, Escalated: true}}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/1/escalate", nil)
		recorder := serveAs(router, req, taPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)

		var dto TicketDTO
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&dto))
		assert.True(t, dto.Escalated)
	})

	t.Run("deescalate", func(t *testing.T) {
		svc := &stubTicketService{ticket: &domain.Ticket{ID: 1, StudentID: 10, Escalated: false}}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/1/deescalate", nil)
		recorder := serveAs(router, req, adminPrincipal)

		require.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestTicketHandler_DeleteTicket(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &stubTicketService{}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/1", nil)
		recorder := serveAs(router, req, adminPrincipal)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := &stubTicketService{err: apperrors.NewForbiddenError("only admins may delete tickets")}
		router := newTicketRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/1", nil)
		recorder := serveAs(router, req, studentPrincipal)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
