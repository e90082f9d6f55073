package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Row types as they come out of Postgres. Repositories convert these to
// domain models.

type Tenant struct {
	ID          uuid.UUID
	PublicKey   string
	AccessToken string
	Active      bool
	Blocked     bool
	CreatedAt   time.Time
}

type Sport struct {
	ID                int
	SportKey          string
	HalfLengthSec     int
	OvertimeLengthSec int
}

type Team struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	ShirtColor  string
	NumberColor string
	LogoURL     sql.NullString
	CreatedAt   time.Time
}

type Game struct {
	ID                    uuid.UUID
	TenantID              uuid.UUID
	SportID               int
	HomeTeamID            uuid.UUID
	AwayTeamID            uuid.UUID
	Status                string
	Period                string
	TimerRunning          bool
	TimerStartedAt        sql.NullTime
	ElapsedSecondsAtPause int
	TimerDirection        string
	TimerSetSeconds       int
	HomeKicks             string
	AwayKicks             string
	Active                bool
	CreatedAt             time.Time
}

type TeamStats struct {
	GameID      uuid.UUID
	IsHome      bool
	Score       int
	YellowCards int
	RedCards    int
}
