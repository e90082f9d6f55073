package overlay

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/models"
	"github.com/scorecast/scorecast/internal/statecache"
)

// SnapshotSource produces the projected state for a tenant. (nil, nil)
// means the tenant has no active game.
type SnapshotSource interface {
	BuildSnapshot(ctx context.Context, tenantID uuid.UUID) (*models.Snapshot, error)
	BuildAssets(ctx context.Context, tenantID uuid.UUID) (*models.AssetBundle, error)
}

// sender abstracts the connection manager's delivery surface.
type sender interface {
	BroadcastToTenant(tenantID uuid.UUID, msg *Message)
	Send(conn *Connection, msg *Message)
}

// Broadcaster implements the sync protocol: full state on join, cheap
// version-compared polls, fan-out to the tenant channel after mutations.
// It is the only writer of the state cache.
type Broadcaster struct {
	sender sender
	cache  *statecache.Cache
	source SnapshotSource
	clock  clockwork.Clock
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster(sender sender, cache *statecache.Cache, source SnapshotSource, clock clockwork.Clock) *Broadcaster {
	return &Broadcaster{
		sender: sender,
		cache:  cache,
		source: source,
		clock:  clock,
	}
}

// BroadcastState recomputes the tenant's snapshot, bumps the cache version
// and pushes the result to every subscriber. Called after every mutation;
// never carries asset payloads.
func (b *Broadcaster) BroadcastState(ctx context.Context, tenantID uuid.UUID) {
	snapshot, err := b.source.BuildSnapshot(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to build snapshot for broadcast")
		return
	}
	if snapshot == nil {
		// Game is gone; drop the entry so the next read repopulates.
		b.cache.Remove(tenantID)
		return
	}

	version := b.cache.Set(tenantID, *snapshot)
	msg, err := newStateMessage(snapshot, version, b.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode state message")
		return
	}
	b.sender.BroadcastToTenant(tenantID, msg)
}

// BroadcastAssets pushes just the appearance payload to the tenant's
// subscribers. Called only after appearance-changing mutations.
func (b *Broadcaster) BroadcastAssets(ctx context.Context, tenantID uuid.UUID) {
	assets, err := b.source.BuildAssets(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to build assets for broadcast")
		return
	}
	if assets == nil {
		return
	}

	msg, err := newAssetsMessage(assets, b.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode assets message")
		return
	}
	b.sender.BroadcastToTenant(tenantID, msg)
}

// Join pushes the current full state and the asset bundle to a freshly
// subscribed connection. A tenant without an active game gets nothing; the
// next broadcast will reach the connection through its pool membership.
func (b *Broadcaster) Join(ctx context.Context, conn *Connection) {
	snapshot, version, ok := b.lookup(ctx, conn.TenantID)
	if !ok {
		return
	}

	msg, err := newStateMessage(&snapshot, version, b.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode state message")
		return
	}
	b.sender.Send(conn, msg)
	b.sendAssets(ctx, conn)
}

// Poll answers a periodic client poll. A client whose last seen version is
// current gets nothing, which keeps steady-state polling bandwidth-free. A
// cold cache is treated like a fresh join: repository read, cache populate,
// state plus assets.
func (b *Broadcaster) Poll(ctx context.Context, conn *Connection, lastVersion int64) {
	if snapshot, version, ok := b.cache.Get(conn.TenantID); ok {
		if version == lastVersion {
			return
		}
		msg, err := newStateMessage(&snapshot, version, b.clock.Now())
		if err != nil {
			log.Error().Err(err).Msg("failed to encode state message")
			return
		}
		b.sender.Send(conn, msg)
		return
	}

	snapshot, version, ok := b.lookup(ctx, conn.TenantID)
	if !ok {
		return
	}
	msg, err := newStateMessage(&snapshot, version, b.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode state message")
		return
	}
	b.sender.Send(conn, msg)
	b.sendAssets(ctx, conn)
}

// CurrentState returns the tenant's snapshot and version for the one-shot
// HTTP read, populating the cache on a miss. ok is false when the tenant has
// no active game.
func (b *Broadcaster) CurrentState(ctx context.Context, tenantID uuid.UUID) (models.Snapshot, int64, bool) {
	return b.lookup(ctx, tenantID)
}

// lookup reads through the cache, falling back to the snapshot source and
// populating the cache on a miss. The populate is insert-only: if a mutation
// broadcast landed while the snapshot was being built, its fresher entry
// wins and is what gets returned.
func (b *Broadcaster) lookup(ctx context.Context, tenantID uuid.UUID) (models.Snapshot, int64, bool) {
	if snapshot, version, ok := b.cache.Get(tenantID); ok {
		return snapshot, version, true
	}

	snapshot, err := b.source.BuildSnapshot(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to load snapshot")
		return models.Snapshot{}, 0, false
	}
	if snapshot == nil {
		return models.Snapshot{}, 0, false
	}

	cached, version := b.cache.SetIfAbsent(tenantID, *snapshot)
	return cached, version, true
}

func (b *Broadcaster) sendAssets(ctx context.Context, conn *Connection) {
	assets, err := b.source.BuildAssets(ctx, conn.TenantID)
	if err != nil || assets == nil {
		return
	}
	msg, err := newAssetsMessage(assets, b.clock.Now())
	if err != nil {
		return
	}
	b.sender.Send(conn, msg)
}
