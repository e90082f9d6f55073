package scoreboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/scorecast/scorecast/internal/models"
)

// SnapshotBuilder projects a tenant's game aggregate into the broadcast-safe
// snapshot. Logo payloads are deliberately excluded and travel on the
// separate assets bundle.
type SnapshotBuilder struct {
	repo  GameRepository
	clock clockwork.Clock
}

// NewSnapshotBuilder creates a new snapshot builder.
func NewSnapshotBuilder(repo GameRepository, clock clockwork.Clock) *SnapshotBuilder {
	return &SnapshotBuilder{
		repo:  repo,
		clock: clock,
	}
}

// BuildSnapshot loads the tenant's aggregate and projects it. Returns
// (nil, nil) when the tenant has no active game.
func (b *SnapshotBuilder) BuildSnapshot(ctx context.Context, tenantID uuid.UUID) (*models.Snapshot, error) {
	agg, err := b.repo.LoadGameAggregate(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	if agg == nil {
		return nil, nil
	}

	now := b.clock.Now()
	game := agg.Game

	return &models.Snapshot{
		GameID:          game.ID.String(),
		Status:          game.Status,
		Period:          game.Period,
		HomeName:        agg.HomeTeam.Name,
		AwayName:        agg.AwayTeam.Name,
		HomeScore:       agg.Home.Score,
		AwayScore:       agg.Away.Score,
		HomeYellowCards: agg.Home.YellowCards,
		HomeRedCards:    agg.Home.RedCards,
		AwayYellowCards: agg.Away.YellowCards,
		AwayRedCards:    agg.Away.RedCards,
		HomeShirtColor:  agg.HomeTeam.ShirtColor,
		HomeNumberColor: agg.HomeTeam.NumberColor,
		AwayShirtColor:  agg.AwayTeam.ShirtColor,
		AwayNumberColor: agg.AwayTeam.NumberColor,
		TimerSeconds:    GameTimer(&game, now),
		TimerRunning:    game.TimerRunning,
		TimerStartedAt:  game.TimerStartedAt,
		TimerDirection:  game.TimerDirection,
		TimerSetSeconds: game.TimerSetSeconds,
		HomeKicks:       game.HomeKicks,
		AwayKicks:       game.AwayKicks,
		ServerTime:      now,
	}, nil
}

// BuildAssets loads just the appearance payload for the tenant's active game.
// Returns (nil, nil) when there is no active game.
func (b *SnapshotBuilder) BuildAssets(ctx context.Context, tenantID uuid.UUID) (*models.AssetBundle, error) {
	agg, err := b.repo.LoadGameAggregate(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to build assets: %w", err)
	}
	if agg == nil {
		return nil, nil
	}

	return &models.AssetBundle{
		HomeName:    agg.HomeTeam.Name,
		AwayName:    agg.AwayTeam.Name,
		HomeLogoURL: agg.HomeTeam.LogoURL,
		AwayLogoURL: agg.AwayTeam.LogoURL,
	}, nil
}
