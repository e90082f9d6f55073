package scoreboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/scorecast/scorecast/internal/db"
	"github.com/scorecast/scorecast/internal/models"
	"github.com/scorecast/scorecast/internal/sqlutil"
)

// GameRepository defines what the app and snapshot builder need from storage.
// Absence of an active game is a (nil, nil) return, never an error.
type GameRepository interface {
	LoadActiveGame(ctx context.Context, tenantID uuid.UUID) (*models.Game, error)
	LoadGameAggregate(ctx context.Context, tenantID uuid.UUID) (*models.GameAggregate, error)
	SaveGame(ctx context.Context, game *models.Game) error
	SaveTeamStats(ctx context.Context, stats *models.TeamStats) error
	LoadTeamStats(ctx context.Context, gameID uuid.UUID, isHome bool) (*models.TeamStats, error)
	SaveTeam(ctx context.Context, team *models.Team) error
	LoadSport(ctx context.Context, sportID int) (*models.SportConfig, error)
	EnsureSport(ctx context.Context, key string, halfLengthSec, overtimeLengthSec int) (*models.SportConfig, error)
	CloseActiveGames(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CreateGame(ctx context.Context, game *models.Game, homeTeam, awayTeam *models.Team) (*models.Game, error)
}

// Repository implements GameRepository over Postgres.
type Repository struct {
	queries *db.Queries
	sqlDB   *sql.DB
}

// NewRepository creates a new scoreboard repository. The raw handle is kept
// for the create-game transaction.
func NewRepository(queries *db.Queries, sqlDB *sql.DB) *Repository {
	return &Repository{
		queries: queries,
		sqlDB:   sqlDB,
	}
}

// LoadActiveGame returns the tenant's non-terminal game, or (nil, nil).
func (r *Repository) LoadActiveGame(ctx context.Context, tenantID uuid.UUID) (*models.Game, error) {
	dbGame, err := r.queries.GetActiveGame(ctx, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active game: %w", err)
	}
	return r.dbGameToModel(dbGame), nil
}

// LoadGameAggregate returns the full row set behind the tenant's active game,
// or (nil, nil) when there is none.
func (r *Repository) LoadGameAggregate(ctx context.Context, tenantID uuid.UUID) (*models.GameAggregate, error) {
	game, err := r.LoadActiveGame(ctx, tenantID)
	if err != nil || game == nil {
		return nil, err
	}

	stats, err := r.queries.GetTeamStats(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team stats: %w", err)
	}

	agg := &models.GameAggregate{Game: *game}
	for _, s := range stats {
		row := models.TeamStats{
			GameID:      s.GameID,
			IsHome:      s.IsHome,
			Score:       s.Score,
			YellowCards: s.YellowCards,
			RedCards:    s.RedCards,
		}
		if s.IsHome {
			agg.Home = row
		} else {
			agg.Away = row
		}
	}

	homeTeam, err := r.queries.GetTeam(ctx, game.HomeTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load home team: %w", err)
	}
	awayTeam, err := r.queries.GetTeam(ctx, game.AwayTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load away team: %w", err)
	}
	agg.HomeTeam = *r.dbTeamToModel(homeTeam)
	agg.AwayTeam = *r.dbTeamToModel(awayTeam)

	sport, err := r.LoadSport(ctx, game.SportID)
	if err != nil {
		return nil, err
	}
	agg.Sport = *sport

	return agg, nil
}

// SaveGame persists the mutable state of a game row.
func (r *Repository) SaveGame(ctx context.Context, game *models.Game) error {
	_, err := r.queries.UpdateGameState(ctx, db.UpdateGameStateParams{
		ID:                    game.ID,
		Status:                string(game.Status),
		Period:                game.Period,
		TimerRunning:          game.TimerRunning,
		TimerStartedAt:        sqlutil.ToSqlTime(game.TimerStartedAt),
		ElapsedSecondsAtPause: game.ElapsedSecondsAtPause,
		TimerDirection:        string(game.TimerDirection),
		TimerSetSeconds:       game.TimerSetSeconds,
		HomeKicks:             db.EncodeKicks(game.HomeKicks),
		AwayKicks:             db.EncodeKicks(game.AwayKicks),
	})
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// SaveTeamStats persists one side's counters.
func (r *Repository) SaveTeamStats(ctx context.Context, stats *models.TeamStats) error {
	err := r.queries.UpdateTeamStats(ctx, db.UpdateTeamStatsParams{
		GameID:      stats.GameID,
		IsHome:      stats.IsHome,
		Score:       stats.Score,
		YellowCards: stats.YellowCards,
		RedCards:    stats.RedCards,
	})
	if err != nil {
		return fmt.Errorf("failed to save team stats: %w", err)
	}
	return nil
}

// LoadTeamStats returns one side's counters for a game, (nil, nil) on miss.
func (r *Repository) LoadTeamStats(ctx context.Context, gameID uuid.UUID, isHome bool) (*models.TeamStats, error) {
	stats, err := r.queries.GetTeamStats(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team stats: %w", err)
	}
	for _, s := range stats {
		if s.IsHome == isHome {
			return &models.TeamStats{
				GameID:      s.GameID,
				IsHome:      s.IsHome,
				Score:       s.Score,
				YellowCards: s.YellowCards,
				RedCards:    s.RedCards,
			}, nil
		}
	}
	return nil, nil
}

// SaveTeam persists a team's appearance fields.
func (r *Repository) SaveTeam(ctx context.Context, team *models.Team) error {
	_, err := r.queries.UpdateTeam(ctx, db.UpdateTeamParams{
		ID:          team.ID,
		Name:        team.Name,
		ShirtColor:  team.ShirtColor,
		NumberColor: team.NumberColor,
		LogoURL:     sqlutil.ToSqlString(team.LogoURL),
	})
	if err != nil {
		return fmt.Errorf("failed to save team: %w", err)
	}
	return nil
}

// LoadSport returns the sport reference row.
func (r *Repository) LoadSport(ctx context.Context, sportID int) (*models.SportConfig, error) {
	sport, err := r.queries.GetSport(ctx, sportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sport: %w", err)
	}
	return &models.SportConfig{
		ID:                sport.ID,
		Key:               sport.SportKey,
		HalfLengthSec:     sport.HalfLengthSec,
		OvertimeLengthSec: sport.OvertimeLengthSec,
	}, nil
}

// EnsureSport upserts the sport reference row and returns it.
func (r *Repository) EnsureSport(ctx context.Context, key string, halfLengthSec, overtimeLengthSec int) (*models.SportConfig, error) {
	sport, err := r.queries.EnsureSport(ctx, db.EnsureSportParams{
		SportKey:          key,
		HalfLengthSec:     halfLengthSec,
		OvertimeLengthSec: overtimeLengthSec,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure sport: %w", err)
	}
	return &models.SportConfig{
		ID:                sport.ID,
		Key:               sport.SportKey,
		HalfLengthSec:     sport.HalfLengthSec,
		OvertimeLengthSec: sport.OvertimeLengthSec,
	}, nil
}

// CloseActiveGames demotes any non-terminal game of the tenant to FULLTIME.
func (r *Repository) CloseActiveGames(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := r.queries.CloseActiveGames(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to close active games: %w", err)
	}
	return n, nil
}

// CreateGame atomically inserts the game, its two team rows and its two
// zeroed stats rows: either all exist afterwards or none do. A uniqueness
// violation on the active-game index surfaces as ErrActiveGameConflict.
func (r *Repository) CreateGame(ctx context.Context, game *models.Game, homeTeam, awayTeam *models.Team) (*models.Game, error) {
	var created db.Game

	err := sqlutil.Run(ctx, r.sqlDB, r.queries.WithTx, func(q *db.Queries) error {
		home, err := q.CreateTeam(ctx, db.CreateTeamParams{
			ID:          homeTeam.ID,
			TenantID:    homeTeam.TenantID,
			Name:        homeTeam.Name,
			ShirtColor:  homeTeam.ShirtColor,
			NumberColor: homeTeam.NumberColor,
			LogoURL:     sqlutil.ToSqlString(homeTeam.LogoURL),
		})
		if err != nil {
			return fmt.Errorf("create home team: %w", err)
		}
		away, err := q.CreateTeam(ctx, db.CreateTeamParams{
			ID:          awayTeam.ID,
			TenantID:    awayTeam.TenantID,
			Name:        awayTeam.Name,
			ShirtColor:  awayTeam.ShirtColor,
			NumberColor: awayTeam.NumberColor,
			LogoURL:     sqlutil.ToSqlString(awayTeam.LogoURL),
		})
		if err != nil {
			return fmt.Errorf("create away team: %w", err)
		}

		created, err = q.CreateGame(ctx, db.CreateGameParams{
			ID:              game.ID,
			TenantID:        game.TenantID,
			SportID:         game.SportID,
			HomeTeamID:      home.ID,
			AwayTeamID:      away.ID,
			Status:          string(game.Status),
			Period:          game.Period,
			TimerDirection:  string(game.TimerDirection),
			TimerSetSeconds: game.TimerSetSeconds,
		})
		if err != nil {
			return fmt.Errorf("create game: %w", err)
		}

		if err := q.CreateTeamStats(ctx, created.ID, true); err != nil {
			return fmt.Errorf("create home stats: %w", err)
		}
		if err := q.CreateTeamStats(ctx, created.ID, false); err != nil {
			return fmt.Errorf("create away stats: %w", err)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrActiveGameConflict
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return r.dbGameToModel(created), nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// dbGameToModel converts a database game to domain model
func (r *Repository) dbGameToModel(g db.Game) *models.Game {
	return &models.Game{
		ID:                    g.ID,
		TenantID:              g.TenantID,
		SportID:               g.SportID,
		HomeTeamID:            g.HomeTeamID,
		AwayTeamID:            g.AwayTeamID,
		Status:                models.GameStatus(g.Status),
		Period:                g.Period,
		TimerRunning:          g.TimerRunning,
		TimerStartedAt:        sqlutil.FromSqlTime(g.TimerStartedAt),
		ElapsedSecondsAtPause: g.ElapsedSecondsAtPause,
		TimerDirection:        models.TimerDirection(g.TimerDirection),
		TimerSetSeconds:       g.TimerSetSeconds,
		HomeKicks:             db.DecodeKicks(g.HomeKicks),
		AwayKicks:             db.DecodeKicks(g.AwayKicks),
		Active:                g.Active,
		CreatedAt:             g.CreatedAt,
	}
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
