package scoreboard

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/models"
)

// StatePublisher receives the broadcast side effects of successful mutations.
// Pushing the new snapshot after every mutation is part of the contract, not
// optional; asset broadcasts fire only after appearance changes.
type StatePublisher interface {
	BroadcastState(ctx context.Context, tenantID uuid.UUID)
	BroadcastAssets(ctx context.Context, tenantID uuid.UUID)
}

// SportRules is the configured period allow-list and default timings for one
// sport, loaded from the YAML config.
type SportRules struct {
	Periods           []string
	HalfLengthSec     int
	OvertimeLengthSec int
}

// DefaultPeriods is used when a sport has no configured allow-list.
var DefaultPeriods = []string{"1H", "2H", "OT1", "OT2", "PEN"}

// App handles scoreboard business logic: it validates and applies mutations
// to the tenant's single active game, persists them and publishes the new
// state. Every operation is a deliberate no-op when the tenant has no active
// game; absence is routine, not an error. Mutations for the same tenant are
// serialized; unrelated tenants proceed independently.
type App struct {
	repo         GameRepository
	publisher    StatePublisher
	clock        clockwork.Clock
	sports       map[string]SportRules
	defaultSport string
	locks        *keyedMutex
}

// NewApp creates a new scoreboard App.
func NewApp(repo GameRepository, publisher StatePublisher, clock clockwork.Clock, sports map[string]SportRules, defaultSport string) *App {
	return &App{
		repo:         repo,
		publisher:    publisher,
		clock:        clock,
		sports:       sports,
		defaultSport: defaultSport,
		locks:        newKeyedMutex(),
	}
}

// withGame runs fn against the tenant's active game under the tenant's
// mutation lock, persists the row and broadcasts the new state. Returns
// without error when no active game exists.
func (a *App) withGame(ctx context.Context, tenantID uuid.UUID, fn func(g *models.Game) error) error {
	unlock := a.locks.Lock(tenantID)
	defer unlock()

	game, err := a.repo.LoadActiveGame(ctx, tenantID)
	if err != nil {
		return err
	}
	if game == nil {
		log.Debug().Str("tenant_id", tenantID.String()).Msg("mutation ignored, no active game")
		return nil
	}

	if err := fn(game); err != nil {
		return err
	}
	if err := a.repo.SaveGame(ctx, game); err != nil {
		return err
	}

	a.publisher.BroadcastState(ctx, tenantID)
	return nil
}

// StartTimer starts the clock; if the game was PREGAME it goes LIVE.
func (a *App) StartTimer(ctx context.Context, tenantID uuid.UUID) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		startTimer(g, a.clock.Now())
		return nil
	})
}

// StopTimer pauses the clock. Idempotent.
func (a *App) StopTimer(ctx context.Context, tenantID uuid.UUID) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		stopTimer(g, a.clock.Now())
		return nil
	})
}

// ResetTimer forces the clock back to zero.
func (a *App) ResetTimer(ctx context.Context, tenantID uuid.UUID) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		resetTimer(g)
		return nil
	})
}

// SetTimer sets what the clock currently reads.
func (a *App) SetTimer(ctx context.Context, tenantID uuid.UUID, seconds int) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		setTimer(g, seconds)
		return nil
	})
}

// SetTimerMode switches between count-up and countdown. The caller follows
// with SetTimer if a consistent display is desired.
func (a *App) SetTimerMode(ctx context.Context, tenantID uuid.UUID, countDown bool) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		setTimerMode(g, countDown)
		return nil
	})
}

// SetStatus applies a lifecycle status. An unknown status token leaves the
// current status in place instead of failing the mutation.
func (a *App) SetStatus(ctx context.Context, tenantID uuid.UUID, status models.GameStatus) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		if !models.ValidGameStatus(status) {
			log.Warn().Str("tenant_id", tenantID.String()).Str("status", string(status)).Msg("unknown status token ignored")
			return nil
		}
		g.Status = status
		return nil
	})
}

// SetPeriod applies a period token validated against the sport's allow-list;
// an unknown token falls back to the first period. Optional half/overtime
// length overrides reposition the countdown target, never the elapsed count.
func (a *App) SetPeriod(ctx context.Context, tenantID uuid.UUID, period string, halfLengthSec, overtimeLengthSec *int) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		rules := a.rulesForGame(ctx, g)

		if !containsPeriod(rules.Periods, period) {
			log.Warn().
				Str("tenant_id", tenantID.String()).
				Str("period", period).
				Msg("unknown period token, falling back to first period")
			period = rules.Periods[0]
		}
		g.Period = period

		if target := periodLength(period, rules, halfLengthSec, overtimeLengthSec); target > 0 {
			g.TimerSetSeconds = target
		}
		return nil
	})
}

// UpdateScore sets one side's score, clamped to be non-negative.
func (a *App) UpdateScore(ctx context.Context, tenantID uuid.UUID, isHome bool, value int) error {
	return a.withStats(ctx, tenantID, isHome, func(s *models.TeamStats) {
		s.Score = clampScore(value)
	})
}

// UpdateCards sets one side's card count, clamped to [0,3].
func (a *App) UpdateCards(ctx context.Context, tenantID uuid.UUID, isHome, isYellow bool, count int) error {
	return a.withStats(ctx, tenantID, isHome, func(s *models.TeamStats) {
		if isYellow {
			s.YellowCards = clampCards(count)
		} else {
			s.RedCards = clampCards(count)
		}
	})
}

// withStats is withGame for the per-side counters.
func (a *App) withStats(ctx context.Context, tenantID uuid.UUID, isHome bool, fn func(s *models.TeamStats)) error {
	unlock := a.locks.Lock(tenantID)
	defer unlock()

	game, err := a.repo.LoadActiveGame(ctx, tenantID)
	if err != nil {
		return err
	}
	if game == nil {
		return nil
	}

	stats, err := a.repo.LoadTeamStats(ctx, game.ID, isHome)
	if err != nil {
		return err
	}
	if stats == nil {
		return nil
	}

	fn(stats)
	if err := a.repo.SaveTeamStats(ctx, stats); err != nil {
		return err
	}

	a.publisher.BroadcastState(ctx, tenantID)
	return nil
}

// RecordPenaltyKick appends an outcome to one side's shootout sequence.
// Appends beyond the cap are silently ignored.
func (a *App) RecordPenaltyKick(ctx context.Context, tenantID uuid.UUID, isHome bool, result models.KickResult) error {
	if result != models.KickGoal && result != models.KickMiss {
		result = models.KickMiss
	}
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		recordPenaltyKick(g, isHome, result)
		return nil
	})
}

// UndoPenaltyKick removes the last recorded kick of one side, if any.
func (a *App) UndoPenaltyKick(ctx context.Context, tenantID uuid.UUID, isHome bool) error {
	return a.withGame(ctx, tenantID, func(g *models.Game) error {
		undoPenaltyKick(g, isHome)
		return nil
	})
}

// ResetGame rewinds the active game to a fresh rematch without creating a new
// row: timer, scores, cards and penalties zeroed, status back to PREGAME.
func (a *App) ResetGame(ctx context.Context, tenantID uuid.UUID) error {
	unlock := a.locks.Lock(tenantID)
	defer unlock()

	game, err := a.repo.LoadActiveGame(ctx, tenantID)
	if err != nil {
		return err
	}
	if game == nil {
		return nil
	}

	rules := a.rulesForGame(ctx, game)
	resetGame(game, rules.Periods[0])
	if err := a.repo.SaveGame(ctx, game); err != nil {
		return err
	}

	for _, isHome := range []bool{true, false} {
		stats, err := a.repo.LoadTeamStats(ctx, game.ID, isHome)
		if err != nil {
			return err
		}
		if stats == nil {
			continue
		}
		stats.Score = 0
		stats.YellowCards = 0
		stats.RedCards = 0
		if err := a.repo.SaveTeamStats(ctx, stats); err != nil {
			return err
		}
	}

	a.publisher.BroadcastState(ctx, tenantID)
	return nil
}

// CreateGameRequest carries the inputs for opening a new game.
type CreateGameRequest struct {
	SportKey        string  `json:"sport_key"`
	HomeName        string  `json:"home_name"`
	AwayName        string  `json:"away_name"`
	HomeShirtColor  string  `json:"home_shirt_color"`
	HomeNumberColor string  `json:"home_number_color"`
	AwayShirtColor  string  `json:"away_shirt_color"`
	AwayNumberColor string  `json:"away_number_color"`
	HomeLogoURL     *string `json:"home_logo_url,omitempty"`
	AwayLogoURL     *string `json:"away_logo_url,omitempty"`
}

// CreateGame opens a new game for the tenant. Any existing non-terminal game
// is demoted to FULLTIME first, so the storage uniqueness constraint is never
// violated mid-transition. Storage still enforces the constraint as a
// backstop; a violation surfaces as ErrActiveGameConflict.
func (a *App) CreateGame(ctx context.Context, tenantID uuid.UUID, req CreateGameRequest) (*models.Game, error) {
	unlock := a.locks.Lock(tenantID)
	defer unlock()

	sportKey := req.SportKey
	if sportKey == "" {
		sportKey = a.defaultSport
	}
	rules, ok := a.sports[sportKey]
	if !ok {
		rules = SportRules{Periods: DefaultPeriods, HalfLengthSec: 2700, OvertimeLengthSec: 900}
	}

	if _, err := a.repo.CloseActiveGames(ctx, tenantID); err != nil {
		return nil, err
	}

	sport, err := a.repo.EnsureSport(ctx, sportKey, rules.HalfLengthSec, rules.OvertimeLengthSec)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:              uuid.New(),
		TenantID:        tenantID,
		SportID:         sport.ID,
		Status:          models.GameStatusPregame,
		Period:          rules.Periods[0],
		TimerDirection:  models.TimerUp,
		TimerSetSeconds: rules.HalfLengthSec,
	}
	homeTeam := newTeam(tenantID, req.HomeName, "Home", req.HomeShirtColor, req.HomeNumberColor, req.HomeLogoURL)
	awayTeam := newTeam(tenantID, req.AwayName, "Away", req.AwayShirtColor, req.AwayNumberColor, req.AwayLogoURL)

	created, err := a.repo.CreateGame(ctx, game, homeTeam, awayTeam)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("game_id", created.ID.String()).
		Str("sport", sportKey).
		Msg("game created")

	a.publisher.BroadcastState(ctx, tenantID)
	a.publisher.BroadcastAssets(ctx, tenantID)
	return created, nil
}

// rulesForGame resolves the configured rules for the game's sport, falling
// back to the stored sport row and the default period list.
func (a *App) rulesForGame(ctx context.Context, g *models.Game) SportRules {
	sport, err := a.repo.LoadSport(ctx, g.SportID)
	if err != nil {
		log.Warn().Err(err).Int("sport_id", g.SportID).Msg("sport lookup failed, using defaults")
		return SportRules{Periods: DefaultPeriods, HalfLengthSec: 2700, OvertimeLengthSec: 900}
	}
	if rules, ok := a.sports[sport.Key]; ok && len(rules.Periods) > 0 {
		return rules
	}
	return SportRules{
		Periods:           DefaultPeriods,
		HalfLengthSec:     sport.HalfLengthSec,
		OvertimeLengthSec: sport.OvertimeLengthSec,
	}
}

func newTeam(tenantID uuid.UUID, name, fallback, shirtColor, numberColor string, logoURL *string) *models.Team {
	if name == "" {
		name = fallback
	}
	if shirtColor == "" {
		shirtColor = "#ffffff"
	}
	if numberColor == "" {
		numberColor = "#000000"
	}
	return &models.Team{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        name,
		ShirtColor:  shirtColor,
		NumberColor: numberColor,
		LogoURL:     logoURL,
	}
}

func containsPeriod(periods []string, p string) bool {
	for _, known := range periods {
		if known == p {
			return true
		}
	}
	return false
}

// periodLength picks the countdown target for a period: overtime periods use
// the overtime length, the penalty shootout keeps the current target, and
// everything else uses the half length. Explicit overrides win.
func periodLength(period string, rules SportRules, halfOverride, overtimeOverride *int) int {
	switch {
	case period == "PEN":
		return 0
	case strings.HasPrefix(period, "OT"):
		if overtimeOverride != nil {
			return *overtimeOverride
		}
		return rules.OvertimeLengthSec
	default:
		if halfOverride != nil {
			return *halfOverride
		}
		return rules.HalfLengthSec
	}
}
