package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/scorecast/scorecast/internal/db"
	"github.com/scorecast/scorecast/internal/overlay"
	"github.com/scorecast/scorecast/internal/scoreboard"
	"github.com/scorecast/scorecast/internal/statecache"
	"github.com/scorecast/scorecast/internal/teams"
	"github.com/scorecast/scorecast/internal/tenants"
)

type Services struct {
	Scoreboard *scoreboard.Service
	Teams      *teams.Service
	Overlay    *overlay.Service
	Tenants    *tenants.Service
}

func setupServices(database *sql.DB, config *Config) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()
	queries := db.New(database)

	// Tenants
	tenantRepo := tenants.NewRepository(queries)
	tenantApp := tenants.NewApp(tenantRepo)
	tenantService := tenants.NewService(tenantApp, getEnv("ADMIN_TOKEN", ""))

	// Game state and snapshots
	gameRepo := scoreboard.NewRepository(queries, database)
	snapshots := scoreboard.NewSnapshotBuilder(gameRepo, clock)

	// Overlay gateway: the versioned cache plus the websocket fan-out. The
	// scoreboard publishes through it, so it is built first.
	cache := statecache.New()
	overlayService := overlay.NewService(snapshots, cache, tenantApp, clock)

	// Scoreboard
	rules, defaultSport := sportRules(config)
	scoreboardApp := scoreboard.NewApp(gameRepo, overlayService, clock, rules, defaultSport)
	scoreboardService := scoreboard.NewService(scoreboardApp, tenantApp)

	// Teams
	teamsRepo := teams.NewRepository(queries)
	teamsApp := teams.NewApp(teamsRepo, overlayService)
	teamsService := teams.NewService(teamsApp, tenantApp)

	return &Services{
		Scoreboard: scoreboardService,
		Teams:      teamsService,
		Overlay:    overlayService,
		Tenants:    tenantService,
	}
}
