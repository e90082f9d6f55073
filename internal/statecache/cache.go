// Package statecache holds the last projected snapshot per tenant together
// with a per-tenant version counter, so read-heavy polling never has to touch
// storage while nothing changed. It is a cache, not a source of truth: it may
// be evicted wholesale on restart and is rebuilt from the repository on the
// next read.
package statecache

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scorecast/scorecast/internal/models"
)

// Entry is one tenant's cached snapshot.
type Entry struct {
	Snapshot models.Snapshot
	Version  int64
	CachedAt time.Time
}

// Cache is a concurrency-safe, tenant-keyed snapshot store. Versions start at
// 1 on first write and are strictly increasing for the lifetime of the
// process; they are never persisted and are only comparable within one
// process lifetime.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[uuid.UUID]Entry),
	}
}

// Set inserts or replaces the tenant's snapshot, bumping its version, and
// returns the new version.
func (c *Cache) Set(tenantID uuid.UUID, snapshot models.Snapshot) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	version := c.entries[tenantID].Version + 1
	c.entries[tenantID] = Entry{
		Snapshot: snapshot,
		Version:  version,
		CachedAt: time.Now(),
	}
	return version
}

// SetIfAbsent inserts the snapshot only when the tenant has no entry yet and
// returns the entry that is current afterwards. Read-path populates go
// through this instead of Set: a snapshot built just before a mutation must
// not overshadow the mutation's fresher one at a higher version.
func (c *Cache) SetIfAbsent(tenantID uuid.UUID, snapshot models.Snapshot) (models.Snapshot, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[tenantID]; ok {
		return entry.Snapshot, entry.Version
	}
	c.entries[tenantID] = Entry{
		Snapshot: snapshot,
		Version:  1,
		CachedAt: time.Now(),
	}
	return snapshot, 1
}

// Get returns the tenant's snapshot and version. ok is false on a cold
// cache; the caller must fall back to the repository.
func (c *Cache) Get(tenantID uuid.UUID) (models.Snapshot, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[tenantID]
	if !ok {
		return models.Snapshot{}, 0, false
	}
	return entry.Snapshot, entry.Version, true
}

// Remove drops the tenant's entry. Used when a game ends or a tenant is
// deactivated. The version counter restarts at 1 on the next Set, which is
// safe because clients only compare versions within one connection.
func (c *Cache) Remove(tenantID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}

// Len reports the number of cached tenants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
