package scoreboard

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes the read-modify-write-broadcast sequence per tenant
// without a global lock, so unrelated tenants never contend. Entries are not
// reclaimed; the live tenant set is small and bounded.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the tenant's mutex and returns its unlock func.
func (k *keyedMutex) Lock(tenantID uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		k.locks[tenantID] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
