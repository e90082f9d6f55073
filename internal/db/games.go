package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const gameColumns = `id, tenant_id, sport_id, home_team_id, away_team_id, status, period,
timer_running, timer_started_at, elapsed_seconds_at_pause, timer_direction,
timer_set_seconds, home_kicks, away_kicks, active, created_at`

func scanGame(row *sql.Row) (Game, error) {
	var g Game
	err := row.Scan(
		&g.ID, &g.TenantID, &g.SportID, &g.HomeTeamID, &g.AwayTeamID,
		&g.Status, &g.Period, &g.TimerRunning, &g.TimerStartedAt,
		&g.ElapsedSecondsAtPause, &g.TimerDirection, &g.TimerSetSeconds,
		&g.HomeKicks, &g.AwayKicks, &g.Active, &g.CreatedAt,
	)
	return g, err
}

const getActiveGame = `
SELECT ` + gameColumns + `
FROM games
WHERE tenant_id = $1 AND active AND status <> 'FULLTIME'
`

// GetActiveGame returns the tenant's single non-terminal game. Callers map
// sql.ErrNoRows to "no active game".
func (q *Queries) GetActiveGame(ctx context.Context, tenantID uuid.UUID) (Game, error) {
	return scanGame(q.db.QueryRowContext(ctx, getActiveGame, tenantID))
}

const createGame = `
INSERT INTO games (
	id, tenant_id, sport_id, home_team_id, away_team_id, status, period,
	timer_running, timer_started_at, elapsed_seconds_at_pause, timer_direction,
	timer_set_seconds, home_kicks, away_kicks, active
)
VALUES ($1, $2, $3, $4, $5, $6, $7, false, NULL, 0, $8, $9, '', '', true)
RETURNING ` + gameColumns

type CreateGameParams struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	SportID         int
	HomeTeamID      uuid.UUID
	AwayTeamID      uuid.UUID
	Status          string
	Period          string
	TimerDirection  string
	TimerSetSeconds int
}

// CreateGame inserts a fresh game row. The partial unique index
// games_one_active_per_tenant rejects a second non-FULLTIME active game.
func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) (Game, error) {
	return scanGame(q.db.QueryRowContext(ctx, createGame,
		arg.ID, arg.TenantID, arg.SportID, arg.HomeTeamID, arg.AwayTeamID,
		arg.Status, arg.Period, arg.TimerDirection, arg.TimerSetSeconds,
	))
}

const updateGameState = `
UPDATE games SET
	status = $2,
	period = $3,
	timer_running = $4,
	timer_started_at = $5,
	elapsed_seconds_at_pause = $6,
	timer_direction = $7,
	timer_set_seconds = $8,
	home_kicks = $9,
	away_kicks = $10
WHERE id = $1
RETURNING ` + gameColumns

type UpdateGameStateParams struct {
	ID                    uuid.UUID
	Status                string
	Period                string
	TimerRunning          bool
	TimerStartedAt        sql.NullTime
	ElapsedSecondsAtPause int
	TimerDirection        string
	TimerSetSeconds       int
	HomeKicks             string
	AwayKicks             string
}

// UpdateGameState persists the full mutable state of a game row.
func (q *Queries) UpdateGameState(ctx context.Context, arg UpdateGameStateParams) (Game, error) {
	return scanGame(q.db.QueryRowContext(ctx, updateGameState,
		arg.ID, arg.Status, arg.Period, arg.TimerRunning, arg.TimerStartedAt,
		arg.ElapsedSecondsAtPause, arg.TimerDirection, arg.TimerSetSeconds,
		arg.HomeKicks, arg.AwayKicks,
	))
}

const closeActiveGames = `
UPDATE games SET status = 'FULLTIME', active = false, timer_running = false
WHERE tenant_id = $1 AND active AND status <> 'FULLTIME'
`

// CloseActiveGames demotes any non-terminal game of the tenant to FULLTIME.
// Idempotent; may affect zero rows.
func (q *Queries) CloseActiveGames(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, closeActiveGames, tenantID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createTeamStats = `
INSERT INTO team_stats (game_id, is_home, score, yellow_cards, red_cards)
VALUES ($1, $2, 0, 0, 0)
`

// CreateTeamStats inserts a zeroed stats row for one side of a game.
func (q *Queries) CreateTeamStats(ctx context.Context, gameID uuid.UUID, isHome bool) error {
	_, err := q.db.ExecContext(ctx, createTeamStats, gameID, isHome)
	return err
}

const updateTeamStats = `
UPDATE team_stats SET score = $3, yellow_cards = $4, red_cards = $5
WHERE game_id = $1 AND is_home = $2
`

type UpdateTeamStatsParams struct {
	GameID      uuid.UUID
	IsHome      bool
	Score       int
	YellowCards int
	RedCards    int
}

// UpdateTeamStats persists one side's counters.
func (q *Queries) UpdateTeamStats(ctx context.Context, arg UpdateTeamStatsParams) error {
	_, err := q.db.ExecContext(ctx, updateTeamStats,
		arg.GameID, arg.IsHome, arg.Score, arg.YellowCards, arg.RedCards)
	return err
}

const getTeamStats = `
SELECT game_id, is_home, score, yellow_cards, red_cards
FROM team_stats
WHERE game_id = $1
ORDER BY is_home DESC
`

// GetTeamStats returns both stats rows of a game, home first.
func (q *Queries) GetTeamStats(ctx context.Context, gameID uuid.UUID) ([]TeamStats, error) {
	rows, err := q.db.QueryContext(ctx, getTeamStats, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []TeamStats
	for rows.Next() {
		var s TeamStats
		if err := rows.Scan(&s.GameID, &s.IsHome, &s.Score, &s.YellowCards, &s.RedCards); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
