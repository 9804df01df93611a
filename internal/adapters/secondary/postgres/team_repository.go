package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusdesk/capstone-support-backend/internal/core/domain"
	apperrors "github.com/campusdesk/capstone-support-backend/internal/core/errors"
	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// TeamRepository is the secondary adapter for capstone team lookups.
type TeamRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TeamRepository = (*TeamRepository)(nil)

// NewTeamRepository creates a new team repository.
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// GetByID fetches a team by id.
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	const query = `
		SELECT id, name, sponsor_name, section, instructor_id
		FROM teams
		WHERE id = $1`

	db := GetDBTX(ctx, r.pool)

	var (
		team         domain.Team
		sponsorName  pgtype.Text
		section      pgtype.Text
		instructorID pgtype.Int8
	)
	err := db.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&sponsorName,
		&section,
		&instructorID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("fetching team %d: %w", id, err)
	}

	team.SponsorName = sponsorName.String
	team.Section = section.String
	team.InstructorID = instructorID.Int64

	return &team, nil
}
