package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus defines the lifecycle status of a game.
type GameStatus string

const (
	GameStatusPregame   GameStatus = "PREGAME"
	GameStatusLive      GameStatus = "LIVE"
	GameStatusHalftime  GameStatus = "HALFTIME"
	GameStatusFulltime  GameStatus = "FULLTIME"
	GameStatusPenalties GameStatus = "PEN"
)

// ValidGameStatus reports whether s is one of the known lifecycle statuses.
func ValidGameStatus(s GameStatus) bool {
	switch s {
	case GameStatusPregame, GameStatusLive, GameStatusHalftime, GameStatusFulltime, GameStatusPenalties:
		return true
	}
	return false
}

// TimerDirection defines whether the game clock counts up or down.
type TimerDirection string

const (
	TimerUp   TimerDirection = "UP"
	TimerDown TimerDirection = "DOWN"
)

// KickResult is the outcome of a single penalty kick.
type KickResult string

const (
	KickGoal KickResult = "goal"
	KickMiss KickResult = "miss"
)

// MaxPenaltyKicks caps each side's penalty sequence. Appends beyond the
// cap are silently ignored.
const MaxPenaltyKicks = 15

// Game represents one match instance belonging to a single tenant.
// The persisted timer fields (TimerStartedAt, ElapsedSecondsAtPause) are the
// sole source of truth for the clock; the live value is always derived from
// them plus the current wall clock, never stored.
type Game struct {
	ID                    uuid.UUID      `json:"id"`
	TenantID              uuid.UUID      `json:"tenant_id"`
	SportID               int            `json:"sport_id"`
	HomeTeamID            uuid.UUID      `json:"home_team_id"`
	AwayTeamID            uuid.UUID      `json:"away_team_id"`
	Status                GameStatus     `json:"status"`
	Period                string         `json:"period"`
	TimerRunning          bool           `json:"timer_running"`
	TimerStartedAt        *time.Time     `json:"timer_started_at,omitempty"`
	ElapsedSecondsAtPause int            `json:"elapsed_seconds_at_pause"`
	TimerDirection        TimerDirection `json:"timer_direction"`
	TimerSetSeconds       int            `json:"timer_set_seconds"`
	HomeKicks             []KickResult   `json:"home_kicks"`
	AwayKicks             []KickResult   `json:"away_kicks"`
	Active                bool           `json:"active"`
	CreatedAt             time.Time      `json:"created_at"`
}

// TeamStats holds the mutable per-side counters of a game.
type TeamStats struct {
	GameID      uuid.UUID `json:"game_id"`
	IsHome      bool      `json:"is_home"`
	Score       int       `json:"score"`
	YellowCards int       `json:"yellow_cards"`
	RedCards    int       `json:"red_cards"`
}

// SportConfig holds per-sport timing rules and the period allow-list.
type SportConfig struct {
	ID                int      `json:"id"`
	Key               string   `json:"key"`
	Periods           []string `json:"periods"`
	HalfLengthSec     int      `json:"half_length_sec"`
	OvertimeLengthSec int      `json:"overtime_length_sec"`
}

// GameAggregate is the full row set backing one tenant's active game.
type GameAggregate struct {
	Game     Game
	Home     TeamStats
	Away     TeamStats
	HomeTeam Team
	AwayTeam Team
	Sport    SportConfig
}
