package scoreboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/scorecast/scorecast/internal/models"
)

// fakeRepo keeps one tenant's rows in memory.
type fakeRepo struct {
	game   *models.Game
	home   *models.TeamStats
	away   *models.TeamStats
	sport  *models.SportConfig
	closed int64
}

func newFakeRepo() *fakeRepo {
	gameID := uuid.New()
	return &fakeRepo{
		game: &models.Game{
			ID:              gameID,
			TenantID:        uuid.New(),
			SportID:         1,
			Status:          models.GameStatusPregame,
			Period:          "1H",
			TimerDirection:  models.TimerUp,
			TimerSetSeconds: 2700,
			Active:          true,
		},
		home:  &models.TeamStats{GameID: gameID, IsHome: true},
		away:  &models.TeamStats{GameID: gameID, IsHome: false},
		sport: &models.SportConfig{ID: 1, Key: "football", HalfLengthSec: 2700, OvertimeLengthSec: 900},
	}
}

func (f *fakeRepo) LoadActiveGame(ctx context.Context, tenantID uuid.UUID) (*models.Game, error) {
	if f.game == nil {
		return nil, nil
	}
	copied := *f.game
	return &copied, nil
}

func (f *fakeRepo) LoadGameAggregate(ctx context.Context, tenantID uuid.UUID) (*models.GameAggregate, error) {
	return nil, nil
}

func (f *fakeRepo) SaveGame(ctx context.Context, game *models.Game) error {
	copied := *game
	f.game = &copied
	return nil
}

func (f *fakeRepo) SaveTeamStats(ctx context.Context, stats *models.TeamStats) error {
	copied := *stats
	if stats.IsHome {
		f.home = &copied
	} else {
		f.away = &copied
	}
	return nil
}

func (f *fakeRepo) LoadTeamStats(ctx context.Context, gameID uuid.UUID, isHome bool) (*models.TeamStats, error) {
	src := f.away
	if isHome {
		src = f.home
	}
	if src == nil {
		return nil, nil
	}
	copied := *src
	return &copied, nil
}

func (f *fakeRepo) SaveTeam(ctx context.Context, team *models.Team) error { return nil }

func (f *fakeRepo) LoadSport(ctx context.Context, sportID int) (*models.SportConfig, error) {
	return f.sport, nil
}

func (f *fakeRepo) EnsureSport(ctx context.Context, key string, halfLengthSec, overtimeLengthSec int) (*models.SportConfig, error) {
	return f.sport, nil
}

func (f *fakeRepo) CloseActiveGames(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if f.game != nil && f.game.Active && f.game.Status != models.GameStatusFulltime {
		f.game.Status = models.GameStatusFulltime
		f.game.Active = false
		f.closed++
		return 1, nil
	}
	return 0, nil
}

func (f *fakeRepo) CreateGame(ctx context.Context, game *models.Game, homeTeam, awayTeam *models.Team) (*models.Game, error) {
	copied := *game
	copied.Active = true
	f.game = &copied
	f.home = &models.TeamStats{GameID: game.ID, IsHome: true}
	f.away = &models.TeamStats{GameID: game.ID, IsHome: false}
	return &copied, nil
}

type fakePublisher struct {
	stateBroadcasts  int
	assetsBroadcasts int
}

func (p *fakePublisher) BroadcastState(ctx context.Context, tenantID uuid.UUID)  { p.stateBroadcasts++ }
func (p *fakePublisher) BroadcastAssets(ctx context.Context, tenantID uuid.UUID) { p.assetsBroadcasts++ }

func newTestApp(repo *fakeRepo, clock clockwork.Clock) (*App, *fakePublisher) {
	publisher := &fakePublisher{}
	sports := map[string]SportRules{
		"football": {Periods: DefaultPeriods, HalfLengthSec: 2700, OvertimeLengthSec: 900},
	}
	return NewApp(repo, publisher, clock, sports, "football"), publisher
}

func TestStartStopTimer(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	app, publisher := newTestApp(repo, clock)
	tenantID := repo.game.TenantID

	if err := app.StartTimer(ctx, tenantID); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	if !repo.game.TimerRunning {
		t.Fatal("timer should be running after start")
	}
	if repo.game.Status != models.GameStatusLive {
		t.Fatalf("status after start = %s, want LIVE", repo.game.Status)
	}

	clock.Advance(75 * time.Second)
	if err := app.StopTimer(ctx, tenantID); err != nil {
		t.Fatalf("StopTimer: %v", err)
	}
	if repo.game.TimerRunning {
		t.Fatal("timer should be stopped")
	}
	if repo.game.ElapsedSecondsAtPause != 75 {
		t.Fatalf("elapsed = %d, want 75", repo.game.ElapsedSecondsAtPause)
	}

	// A second stop persists and broadcasts again but must not change the
	// accumulated time.
	clock.Advance(5 * time.Minute)
	if err := app.StopTimer(ctx, tenantID); err != nil {
		t.Fatalf("second StopTimer: %v", err)
	}
	if repo.game.ElapsedSecondsAtPause != 75 {
		t.Fatalf("elapsed after double stop = %d, want 75", repo.game.ElapsedSecondsAtPause)
	}

	if publisher.stateBroadcasts != 3 {
		t.Fatalf("state broadcasts = %d, want 3", publisher.stateBroadcasts)
	}
}

func TestMutationsIgnoredWithoutActiveGame(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	tenantID := repo.game.TenantID
	repo.game = nil
	repo.home = nil
	repo.away = nil
	app, publisher := newTestApp(repo, clockwork.NewFakeClock())

	if err := app.StartTimer(ctx, tenantID); err != nil {
		t.Fatalf("StartTimer without game: %v", err)
	}
	if err := app.UpdateScore(ctx, tenantID, true, 3); err != nil {
		t.Fatalf("UpdateScore without game: %v", err)
	}
	if err := app.ResetGame(ctx, tenantID); err != nil {
		t.Fatalf("ResetGame without game: %v", err)
	}
	if publisher.stateBroadcasts != 0 {
		t.Fatalf("broadcasts without game = %d, want 0", publisher.stateBroadcasts)
	}
}

func TestSetStatusIgnoresUnknownToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, _ := newTestApp(repo, clockwork.NewFakeClock())
	tenantID := repo.game.TenantID

	if err := app.SetStatus(ctx, tenantID, models.GameStatusHalftime); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if repo.game.Status != models.GameStatusHalftime {
		t.Fatalf("status = %s, want HALFTIME", repo.game.Status)
	}

	if err := app.SetStatus(ctx, tenantID, models.GameStatus("EXTRATIME")); err != nil {
		t.Fatalf("SetStatus unknown: %v", err)
	}
	if repo.game.Status != models.GameStatusHalftime {
		t.Fatalf("unknown status must not change state, got %s", repo.game.Status)
	}
}

func TestSetPeriod(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, _ := newTestApp(repo, clockwork.NewFakeClock())
	tenantID := repo.game.TenantID

	tests := []struct {
		name       string
		period     string
		halfOver   *int
		otOver     *int
		wantPeriod string
		wantTarget int
	}{
		{name: "second half uses half length", period: "2H", wantPeriod: "2H", wantTarget: 2700},
		{name: "overtime uses overtime length", period: "OT1", wantPeriod: "OT1", wantTarget: 900},
		{name: "override wins", period: "OT2", otOver: intPtr(600), wantPeriod: "OT2", wantTarget: 600},
		{name: "penalties keep current target", period: "PEN", wantPeriod: "PEN", wantTarget: 600},
		{name: "unknown falls back to first period", period: "3H", wantPeriod: "1H", wantTarget: 2700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := app.SetPeriod(ctx, tenantID, tt.period, tt.halfOver, tt.otOver); err != nil {
				t.Fatalf("SetPeriod: %v", err)
			}
			if repo.game.Period != tt.wantPeriod {
				t.Fatalf("period = %s, want %s", repo.game.Period, tt.wantPeriod)
			}
			if repo.game.TimerSetSeconds != tt.wantTarget {
				t.Fatalf("target = %d, want %d", repo.game.TimerSetSeconds, tt.wantTarget)
			}
		})
	}
}

func TestUpdateScoreAndCardsClamped(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, _ := newTestApp(repo, clockwork.NewFakeClock())
	tenantID := repo.game.TenantID

	if err := app.UpdateScore(ctx, tenantID, true, -2); err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if repo.home.Score != 0 {
		t.Fatalf("negative score must clamp to 0, got %d", repo.home.Score)
	}

	if err := app.UpdateCards(ctx, tenantID, false, true, 7); err != nil {
		t.Fatalf("UpdateCards: %v", err)
	}
	if repo.away.YellowCards != 3 {
		t.Fatalf("yellow cards must clamp to 3, got %d", repo.away.YellowCards)
	}

	if err := app.UpdateCards(ctx, tenantID, false, false, 2); err != nil {
		t.Fatalf("UpdateCards red: %v", err)
	}
	if repo.away.RedCards != 2 {
		t.Fatalf("red cards = %d, want 2", repo.away.RedCards)
	}
}

func TestPenaltyKickCap(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, _ := newTestApp(repo, clockwork.NewFakeClock())
	tenantID := repo.game.TenantID

	for i := 0; i < models.MaxPenaltyKicks; i++ {
		if err := app.RecordPenaltyKick(ctx, tenantID, true, models.KickGoal); err != nil {
			t.Fatalf("RecordPenaltyKick %d: %v", i, err)
		}
	}
	if len(repo.game.HomeKicks) != models.MaxPenaltyKicks {
		t.Fatalf("home kicks = %d, want %d", len(repo.game.HomeKicks), models.MaxPenaltyKicks)
	}

	// The 16th attempt is silently dropped.
	if err := app.RecordPenaltyKick(ctx, tenantID, true, models.KickMiss); err != nil {
		t.Fatalf("RecordPenaltyKick over cap: %v", err)
	}
	if len(repo.game.HomeKicks) != models.MaxPenaltyKicks {
		t.Fatalf("kicks after over-cap append = %d, want %d", len(repo.game.HomeKicks), models.MaxPenaltyKicks)
	}

	if err := app.UndoPenaltyKick(ctx, tenantID, true); err != nil {
		t.Fatalf("UndoPenaltyKick: %v", err)
	}
	if len(repo.game.HomeKicks) != models.MaxPenaltyKicks-1 {
		t.Fatalf("kicks after undo = %d, want %d", len(repo.game.HomeKicks), models.MaxPenaltyKicks-1)
	}

	// An unknown result token records a miss rather than failing.
	if err := app.RecordPenaltyKick(ctx, tenantID, false, models.KickResult("post")); err != nil {
		t.Fatalf("RecordPenaltyKick unknown result: %v", err)
	}
	if len(repo.game.AwayKicks) != 1 || repo.game.AwayKicks[0] != models.KickMiss {
		t.Fatalf("away kicks = %v, want [miss]", repo.game.AwayKicks)
	}
}

func TestResetGame(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	app, _ := newTestApp(repo, clock)
	tenantID := repo.game.TenantID

	repo.game.Status = models.GameStatusPenalties
	repo.game.Period = "PEN"
	repo.game.ElapsedSecondsAtPause = 5400
	repo.game.HomeKicks = []models.KickResult{models.KickGoal}
	repo.home.Score = 2
	repo.away.YellowCards = 3

	if err := app.ResetGame(ctx, tenantID); err != nil {
		t.Fatalf("ResetGame: %v", err)
	}

	g := repo.game
	if g.Status != models.GameStatusPregame || g.Period != "1H" {
		t.Fatalf("after reset status=%s period=%s, want PREGAME 1H", g.Status, g.Period)
	}
	if g.ElapsedSecondsAtPause != 0 || g.TimerRunning || len(g.HomeKicks) != 0 {
		t.Fatal("timer and penalties must be zeroed on reset")
	}
	if repo.home.Score != 0 || repo.away.YellowCards != 0 {
		t.Fatal("stats rows must be zeroed on reset")
	}
}

func TestCreateGameClosesPrevious(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app, publisher := newTestApp(repo, clockwork.NewFakeClock())
	tenantID := repo.game.TenantID
	oldID := repo.game.ID

	created, err := app.CreateGame(ctx, tenantID, CreateGameRequest{
		HomeName: "Rovers",
		AwayName: "United",
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if created.ID == oldID {
		t.Fatal("create must produce a new game row")
	}
	if repo.closed != 1 {
		t.Fatalf("closed games = %d, want 1", repo.closed)
	}
	if created.Status != models.GameStatusPregame || created.Period != "1H" {
		t.Fatalf("new game status=%s period=%s, want PREGAME 1H", created.Status, created.Period)
	}
	if created.TimerDirection != models.TimerUp || created.TimerSetSeconds != 2700 {
		t.Fatalf("new game timer direction=%s target=%d, want UP 2700", created.TimerDirection, created.TimerSetSeconds)
	}
	if publisher.assetsBroadcasts != 1 {
		t.Fatalf("assets broadcasts = %d, want 1", publisher.assetsBroadcasts)
	}
}

func intPtr(v int) *int { return &v }
