package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// createTestUser inserts a user row directly; account management is outside
// the engine, so there is no repository method for it.
func createTestUser(t *testing.T, ctx context.Context, name string, role domain.Role) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, 'x')
		RETURNING id`,
		name, uuid.NewString()+"@example.com", string(role),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestTeam(t *testing.T, ctx context.Context, name string, instructorID int64) int64 {
	t.Helper()
	var id int64
	err := testPool.QueryRow(ctx, `
		INSERT INTO teams (name, sponsor_name, section, instructor_id)
		VALUES ($1, 'Acme Corp', 'A1', NULLIF($2, 0))
		RETURNING id`,
		name, instructorID,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestTicket(t *testing.T, ctx context.Context, repo *TicketRepository, studentID int64, status domain.TicketStatus, escalated bool) *domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket(domain.TicketParams{
		StudentID:   studentID,
		IssueType:   domain.IssueOther,
		Description: "test ticket",
	})
	require.NoError(t, err)
	ticket.Status = status
	ticket.Escalated = escalated

	created, err := repo.Create(ctx, ticket)
	require.NoError(t, err)
	return created
}

func TestTicketRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	studentID := createTestUser(t, ctx, "Ticket Student", domain.RoleStudent)
	teamID := createTestTeam(t, ctx, "Team Rocket", 0)

	ticket, err := domain.NewTicket(domain.TicketParams{
		StudentID:   studentID,
		TeamID:      teamID,
		SponsorName: "Acme Corp",
		Section:     "A1",
		IssueType:   domain.IssueSponsor,
		Description: "Sponsor is unreachable",
		Priority:    "high",
	})
	require.NoError(t, err)

	created, err := repo.Create(ctx, ticket)
	require.NoError(t, err, "Failed to create ticket")
	assert.NotZero(t, created.ID)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err, "Failed to get ticket by ID")

	assert.Equal(t, studentID, found.StudentID)
	assert.Equal(t, teamID, found.TeamID)
	assert.Equal(t, "Acme Corp", found.SponsorName)
	assert.Equal(t, domain.IssueSponsor, found.IssueType)
	assert.Equal(t, "Sponsor is unreachable", found.Description)
	assert.Equal(t, "high", found.Priority)
	assert.Equal(t, domain.StatusNew, found.Status)
	assert.False(t, found.Escalated)
	assert.Equal(t, "Ticket Student", found.StudentName)
}

func TestTicketRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	_, err := repo.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	studentID := createTestUser(t, ctx, "Update Student", domain.RoleStudent)
	ticket := createTestTicket(t, ctx, repo, studentID, domain.StatusNew, false)

	require.NoError(t, ticket.SetStatus(domain.StatusOngoing))
	ticket.Escalate()
	ticket.Priority = "urgent"

	updated, err := repo.Update(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOngoing, updated.Status)

	found, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOngoing, found.Status)
	assert.True(t, found.Escalated)
	assert.Equal(t, "urgent", found.Priority)
}

func TestTicketRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	ghost := &domain.Ticket{ID: 999999, StudentID: 1, Description: "gone", Status: domain.StatusNew}
	_, err := repo.Update(ctx, ghost)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	studentID := createTestUser(t, ctx, "Delete Student", domain.RoleStudent)
	ticket := createTestTicket(t, ctx, repo, studentID, domain.StatusNew, false)

	require.NoError(t, repo.Delete(ctx, ticket.ID))

	_, err := repo.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	studentID := createTestUser(t, ctx, "List Student", domain.RoleStudent)
	scope := domain.ScopeStudent(studentID)

	t1 := createTestTicket(t, ctx, repo, studentID, domain.StatusNew, false)
	t2 := createTestTicket(t, ctx, repo, studentID, domain.StatusOngoing, true)
	t3 := createTestTicket(t, ctx, repo, studentID, domain.StatusResolved, false)

	t.Run("unfiltered scope", func(t *testing.T) {
		total, err := repo.Count(ctx, scope, domain.TicketFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{
			Scope: scope,
			Sort:  domain.SortIDAsc,
			Limit: 10,
		})
		require.NoError(t, err)
		require.Len(t, tickets, 3)
		assert.Equal(t, t1.ID, tickets[0].ID)
		assert.Equal(t, t3.ID, tickets[2].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		status := domain.StatusOngoing
		filter := domain.TicketFilter{Status: &status}

		tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{Scope: scope, Filter: filter, Limit: 10})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, t2.ID, tickets[0].ID)
	})

	t.Run("escalation filter is independent of status", func(t *testing.T) {
		escalated := true
		filter := domain.TicketFilter{Escalated: &escalated}

		tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{Scope: scope, Filter: filter, Limit: 10})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, t2.ID, tickets[0].ID)
	})

	t.Run("hideResolved excludes resolved", func(t *testing.T) {
		filter := domain.TicketFilter{HideResolved: true}

		total, err := repo.Count(ctx, scope, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("explicit status suppresses hideResolved", func(t *testing.T) {
		status := domain.StatusResolved
		filter := domain.TicketFilter{Status: &status, HideResolved: true}

		tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{Scope: scope, Filter: filter, Limit: 10})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, t3.ID, tickets[0].ID)
	})

	t.Run("explicit ticket id scope", func(t *testing.T) {
		idScope := domain.ScopeTickets([]int64{t1.ID, t3.ID})

		total, err := repo.Count(ctx, idScope, domain.TicketFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("sort newest puts the latest first", func(t *testing.T) {
		tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{
			Scope: scope,
			Sort:  domain.SortNewest,
			Limit: 10,
		})
		require.NoError(t, err)
		require.Len(t, tickets, 3)
		assert.Equal(t, t3.ID, tickets[0].ID)
	})

	t.Run("limit and offset window", func(t *testing.T) {
		tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{
			Scope:  scope,
			Sort:   domain.SortIDAsc,
			Limit:  1,
			Offset: 1,
		})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, t2.ID, tickets[0].ID)
	})
}

func TestTicketRepository_Summarize(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	studentID := createTestUser(t, ctx, "Summary Student", domain.RoleStudent)
	scope := domain.ScopeStudent(studentID)

	createTestTicket(t, ctx, repo, studentID, domain.StatusNew, false)
	createTestTicket(t, ctx, repo, studentID, domain.StatusOngoing, true)
	createTestTicket(t, ctx, repo, studentID, domain.StatusResolved, true)
	createTestTicket(t, ctx, repo, studentID, domain.StatusResolved, false)

	t.Run("counters over the whole scope", func(t *testing.T) {
		summary, err := repo.Summarize(ctx, scope, domain.TicketFilter{})
		require.NoError(t, err)

		assert.Equal(t, int64(4), summary.TotalTickets)
		assert.Equal(t, int64(2), summary.OpenTickets)
		assert.Equal(t, int64(2), summary.ClosedTickets)
		assert.Equal(t, int64(2), summary.EscalatedTickets)
	})

	t.Run("counters respect the filter", func(t *testing.T) {
		escalated := true
		summary, err := repo.Summarize(ctx, scope, domain.TicketFilter{Escalated: &escalated})
		require.NoError(t, err)

		assert.Equal(t, int64(2), summary.TotalTickets)
		assert.Equal(t, int64(1), summary.OpenTickets)
		assert.Equal(t, int64(1), summary.ClosedTickets)
		assert.Equal(t, int64(2), summary.EscalatedTickets)
	})
}

func TestTicketRepository_AssignedToFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)
	assignmentRepo := NewAssignmentRepository(testPool)

	studentID := createTestUser(t, ctx, "Assigned Student", domain.RoleStudent)
	taID := createTestUser(t, ctx, "Assigned TA", domain.RoleTA)
	scope := domain.ScopeStudent(studentID)

	assigned := createTestTicket(t, ctx, repo, studentID, domain.StatusNew, false)
	createTestTicket(t, ctx, repo, studentID, domain.StatusNew, false)

	require.NoError(t, assignmentRepo.Create(ctx, assigned.ID, taID))

	tickets, err := repo.List(ctx, ports.ListTicketsRepoParams{
		Scope:  scope,
		Filter: domain.TicketFilter{AssignedTo: taID},
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, assigned.ID, tickets[0].ID)
}
