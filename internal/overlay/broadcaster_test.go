package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/scorecast/scorecast/internal/models"
	"github.com/scorecast/scorecast/internal/statecache"
)

type fakeSender struct {
	broadcasts []*Message
	direct     []*Message
}

func (f *fakeSender) BroadcastToTenant(tenantID uuid.UUID, msg *Message) {
	f.broadcasts = append(f.broadcasts, msg)
}

func (f *fakeSender) Send(conn *Connection, msg *Message) {
	f.direct = append(f.direct, msg)
}

type fakeSource struct {
	snapshot *models.Snapshot
	assets   *models.AssetBundle
	err      error
	builds   int
	onBuild  func()
}

func (f *fakeSource) BuildSnapshot(ctx context.Context, tenantID uuid.UUID) (*models.Snapshot, error) {
	f.builds++
	if f.onBuild != nil {
		f.onBuild()
	}
	return f.snapshot, f.err
}

func (f *fakeSource) BuildAssets(ctx context.Context, tenantID uuid.UUID) (*models.AssetBundle, error) {
	return f.assets, f.err
}

func newTestBroadcaster(source *fakeSource) (*Broadcaster, *fakeSender, *statecache.Cache) {
	sender := &fakeSender{}
	cache := statecache.New()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	return NewBroadcaster(sender, cache, source, clock), sender, cache
}

func TestBroadcastStateBumpsVersion(t *testing.T) {
	source := &fakeSource{snapshot: &models.Snapshot{Period: "1H"}}
	b, sender, cache := newTestBroadcaster(source)
	tenantID := uuid.New()

	b.BroadcastState(context.Background(), tenantID)
	b.BroadcastState(context.Background(), tenantID)

	if len(sender.broadcasts) != 2 {
		t.Fatalf("broadcasts = %d, want 2", len(sender.broadcasts))
	}
	if sender.broadcasts[0].Version != 1 || sender.broadcasts[1].Version != 2 {
		t.Fatalf("versions = %d,%d, want 1,2", sender.broadcasts[0].Version, sender.broadcasts[1].Version)
	}
	if sender.broadcasts[0].Type != MessageTypeState {
		t.Fatalf("type = %s, want state", sender.broadcasts[0].Type)
	}

	if _, version, ok := cache.Get(tenantID); !ok || version != 2 {
		t.Fatalf("cache version = %d ok=%v, want 2 true", version, ok)
	}
}

func TestBroadcastStateEvictsWhenGameGone(t *testing.T) {
	source := &fakeSource{snapshot: &models.Snapshot{Period: "1H"}}
	b, sender, cache := newTestBroadcaster(source)
	tenantID := uuid.New()

	b.BroadcastState(context.Background(), tenantID)

	source.snapshot = nil
	b.BroadcastState(context.Background(), tenantID)

	if len(sender.broadcasts) != 1 {
		t.Fatalf("broadcasts = %d, want 1 (no push for a vanished game)", len(sender.broadcasts))
	}
	if _, _, ok := cache.Get(tenantID); ok {
		t.Fatal("cache entry must be evicted when the game is gone")
	}
}

func TestPollVersionMatchIsSilent(t *testing.T) {
	source := &fakeSource{snapshot: &models.Snapshot{Period: "1H"}}
	b, sender, _ := newTestBroadcaster(source)
	tenantID := uuid.New()
	conn := &Connection{ID: uuid.New().String(), TenantID: tenantID}

	b.BroadcastState(context.Background(), tenantID)
	buildsBefore := source.builds

	b.Poll(context.Background(), conn, 1)

	if len(sender.direct) != 0 {
		t.Fatalf("direct sends = %d, want 0 for a current client", len(sender.direct))
	}
	if source.builds != buildsBefore {
		t.Fatal("a current poll must not touch the snapshot source")
	}
}

func TestPollStaleClientGetsCachedState(t *testing.T) {
	source := &fakeSource{snapshot: &models.Snapshot{Period: "2H"}}
	b, sender, _ := newTestBroadcaster(source)
	tenantID := uuid.New()
	conn := &Connection{ID: uuid.New().String(), TenantID: tenantID}

	b.BroadcastState(context.Background(), tenantID)
	b.BroadcastState(context.Background(), tenantID)

	b.Poll(context.Background(), conn, 1)

	if len(sender.direct) != 1 {
		t.Fatalf("direct sends = %d, want 1", len(sender.direct))
	}
	if sender.direct[0].Version != 2 {
		t.Fatalf("pushed version = %d, want 2", sender.direct[0].Version)
	}
}

func TestPollColdCacheActsLikeJoin(t *testing.T) {
	source := &fakeSource{
		snapshot: &models.Snapshot{Period: "1H"},
		assets:   &models.AssetBundle{HomeName: "Rovers", AwayName: "United"},
	}
	b, sender, cache := newTestBroadcaster(source)
	tenantID := uuid.New()
	conn := &Connection{ID: uuid.New().String(), TenantID: tenantID}

	b.Poll(context.Background(), conn, 7)

	if len(sender.direct) != 2 {
		t.Fatalf("direct sends = %d, want state+assets", len(sender.direct))
	}
	if sender.direct[0].Type != MessageTypeState || sender.direct[1].Type != MessageTypeAssets {
		t.Fatalf("types = %s,%s, want state,assets", sender.direct[0].Type, sender.direct[1].Type)
	}
	if sender.direct[0].Version != 1 {
		t.Fatalf("cold-cache version = %d, want 1", sender.direct[0].Version)
	}
	if _, _, ok := cache.Get(tenantID); !ok {
		t.Fatal("cold poll must populate the cache")
	}
}

func TestJoinWithoutActiveGameSendsNothing(t *testing.T) {
	source := &fakeSource{}
	b, sender, _ := newTestBroadcaster(source)
	conn := &Connection{ID: uuid.New().String(), TenantID: uuid.New()}

	b.Join(context.Background(), conn)

	if len(sender.direct) != 0 {
		t.Fatalf("direct sends = %d, want 0", len(sender.direct))
	}
}

func TestJoinSendsStateAndAssets(t *testing.T) {
	source := &fakeSource{
		snapshot: &models.Snapshot{Period: "1H"},
		assets:   &models.AssetBundle{HomeName: "Rovers"},
	}
	b, sender, _ := newTestBroadcaster(source)
	conn := &Connection{ID: uuid.New().String(), TenantID: uuid.New()}

	b.Join(context.Background(), conn)

	if len(sender.direct) != 2 {
		t.Fatalf("direct sends = %d, want 2", len(sender.direct))
	}
}

// A snapshot built on a cold read path can race a mutation broadcast: if the
// broadcast's entry lands first, the older read-path snapshot must not
// replace it.
func TestColdReadDoesNotOverwriteConcurrentBroadcast(t *testing.T) {
	source := &fakeSource{snapshot: &models.Snapshot{Period: "1H"}}
	b, sender, cache := newTestBroadcaster(source)
	tenantID := uuid.New()
	conn := &Connection{ID: uuid.New().String(), TenantID: tenantID}

	// The mutation's fresher entry lands while the cold read is still
	// building its snapshot.
	source.onBuild = func() {
		cache.Set(tenantID, models.Snapshot{Period: "2H"})
	}

	b.Poll(context.Background(), conn, 0)

	got, version, ok := cache.Get(tenantID)
	if !ok || got.Period != "2H" {
		t.Fatalf("cache holds %s, want the broadcast's 2H", got.Period)
	}
	if version != 1 {
		t.Fatalf("cache version = %d, want 1", version)
	}
	if len(sender.direct) == 0 || sender.direct[0].Version != 1 {
		t.Fatal("client must be answered with the surviving entry")
	}
}

func TestBroadcastStateSourceErrorIsSwallowed(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	b, sender, cache := newTestBroadcaster(source)
	tenantID := uuid.New()

	b.BroadcastState(context.Background(), tenantID)

	if len(sender.broadcasts) != 0 {
		t.Fatalf("broadcasts = %d, want 0 on source error", len(sender.broadcasts))
	}
	if cache.Len() != 0 {
		t.Fatal("a failed build must not populate the cache")
	}
}
