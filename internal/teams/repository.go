package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scorecast/scorecast/internal/db"
	"github.com/scorecast/scorecast/internal/models"
	"github.com/scorecast/scorecast/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetActiveGame(ctx context.Context, tenantID uuid.UUID) (db.Game, error)
	GetTeam(ctx context.Context, id uuid.UUID) (db.Team, error)
	UpdateTeam(ctx context.Context, arg db.UpdateTeamParams) (db.Team, error)
}

// Repository implements team data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new teams repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// ActiveGameTeamID resolves the team id occupying one side of the tenant's
// active game. Returns uuid.Nil without error when no active game exists.
func (r *Repository) ActiveGameTeamID(ctx context.Context, tenantID uuid.UUID, isHome bool) (uuid.UUID, error) {
	game, err := r.queries.GetActiveGame(ctx, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load active game: %w", err)
	}
	if isHome {
		return game.HomeTeamID, nil
	}
	return game.AwayTeamID, nil
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	dbTeam, err := r.queries.GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return r.dbTeamToModel(dbTeam), nil
}

// UpdateTeam persists a team's appearance fields.
func (r *Repository) UpdateTeam(ctx context.Context, team *models.Team) (*models.Team, error) {
	dbTeam, err := r.queries.UpdateTeam(ctx, db.UpdateTeamParams{
		ID:          team.ID,
		Name:        team.Name,
		ShirtColor:  team.ShirtColor,
		NumberColor: team.NumberColor,
		LogoURL:     sqlutil.ToSqlString(team.LogoURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return r.dbTeamToModel(dbTeam), nil
}

// dbTeamToModel converts a database team to domain model
func (r *Repository) dbTeamToModel(t db.Team) *models.Team {
	return &models.Team{
		ID:          t.ID,
		TenantID:    t.TenantID,
		Name:        t.Name,
		ShirtColor:  t.ShirtColor,
		NumberColor: t.NumberColor,
		LogoURL:     sqlutil.FromSqlStringPtr(t.LogoURL),
		CreatedAt:   t.CreatedAt,
	}
}
