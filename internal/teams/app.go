package teams

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/models"
	"github.com/scorecast/scorecast/internal/scoreboard"
)

// TeamsRepository defines what the app layer needs from the repository
type TeamsRepository interface {
	ActiveGameTeamID(ctx context.Context, tenantID uuid.UUID, isHome bool) (uuid.UUID, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) (*models.Team, error)
}

// UpdateTeamRequest carries an appearance mutation for one side of the
// active game. Nil fields are left unchanged.
type UpdateTeamRequest struct {
	IsHome      bool    `json:"is_home"`
	Name        *string `json:"name,omitempty"`
	ShirtColor  *string `json:"shirt_color,omitempty"`
	NumberColor *string `json:"number_color,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
}

// App handles team appearance logic. Appearance changes push both a state
// broadcast (names and colors ride in the snapshot) and an asset broadcast
// (logos ride on the low-frequency channel).
type App struct {
	repo      TeamsRepository
	publisher scoreboard.StatePublisher
}

// NewApp creates a new teams App
func NewApp(repo TeamsRepository, publisher scoreboard.StatePublisher) *App {
	return &App{
		repo:      repo,
		publisher: publisher,
	}
}

// UpdateTeam applies an appearance mutation to one side of the tenant's
// active game. A no-op when there is no active game.
func (a *App) UpdateTeam(ctx context.Context, tenantID uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	teamID, err := a.repo.ActiveGameTeamID(ctx, tenantID, req.IsHome)
	if err != nil {
		return nil, err
	}
	if teamID == uuid.Nil {
		log.Debug().Str("tenant_id", tenantID.String()).Msg("team update ignored, no active game")
		return nil, nil
	}

	team, err := a.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.ShirtColor != nil {
		team.ShirtColor = *req.ShirtColor
	}
	if req.NumberColor != nil {
		team.NumberColor = *req.NumberColor
	}
	if req.LogoURL != nil {
		team.LogoURL = req.LogoURL
	}

	updated, err := a.repo.UpdateTeam(ctx, team)
	if err != nil {
		return nil, err
	}

	a.publisher.BroadcastState(ctx, tenantID)
	a.publisher.BroadcastAssets(ctx, tenantID)
	return updated, nil
}
