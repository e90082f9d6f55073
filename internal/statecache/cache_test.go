package statecache

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/scorecast/scorecast/internal/models"
)

func TestVersionsStartAtOneAndIncrease(t *testing.T) {
	cache := New()
	tenantID := uuid.New()

	if v := cache.Set(tenantID, models.Snapshot{Period: "1H"}); v != 1 {
		t.Fatalf("first version = %d, want 1", v)
	}
	if v := cache.Set(tenantID, models.Snapshot{Period: "2H"}); v != 2 {
		t.Fatalf("second version = %d, want 2", v)
	}

	snapshot, version, ok := cache.Get(tenantID)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if version != 2 || snapshot.Period != "2H" {
		t.Fatalf("got version=%d period=%s, want 2 2H", version, snapshot.Period)
	}
}

func TestTenantsAreIndependent(t *testing.T) {
	cache := New()
	a := uuid.New()
	b := uuid.New()

	cache.Set(a, models.Snapshot{})
	cache.Set(a, models.Snapshot{})
	if v := cache.Set(b, models.Snapshot{}); v != 1 {
		t.Fatalf("first version for second tenant = %d, want 1", v)
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}
}

func TestSetIfAbsent(t *testing.T) {
	cache := New()
	tenantID := uuid.New()

	snapshot, version := cache.SetIfAbsent(tenantID, models.Snapshot{Period: "1H"})
	if version != 1 || snapshot.Period != "1H" {
		t.Fatalf("insert on empty = v%d %s, want v1 1H", version, snapshot.Period)
	}

	// An existing entry wins; the stale candidate must not overwrite it.
	cache.Set(tenantID, models.Snapshot{Period: "2H"})
	snapshot, version = cache.SetIfAbsent(tenantID, models.Snapshot{Period: "1H"})
	if version != 2 || snapshot.Period != "2H" {
		t.Fatalf("SetIfAbsent over existing = v%d %s, want v2 2H", version, snapshot.Period)
	}

	got, gotVersion, ok := cache.Get(tenantID)
	if !ok || gotVersion != 2 || got.Period != "2H" {
		t.Fatalf("entry after SetIfAbsent = v%d %s ok=%v, want v2 2H true", gotVersion, got.Period, ok)
	}
}

func TestMissAndRemove(t *testing.T) {
	cache := New()
	tenantID := uuid.New()

	if _, _, ok := cache.Get(tenantID); ok {
		t.Fatal("cold cache must miss")
	}

	cache.Set(tenantID, models.Snapshot{})
	cache.Remove(tenantID)
	if _, _, ok := cache.Get(tenantID); ok {
		t.Fatal("removed entry must miss")
	}

	// The counter restarts after removal; versions are only comparable
	// within one connection so this is fine.
	if v := cache.Set(tenantID, models.Snapshot{}); v != 1 {
		t.Fatalf("version after remove = %d, want 1", v)
	}
}

func TestConcurrentSetsStayMonotonic(t *testing.T) {
	cache := New()
	tenantID := uuid.New()

	var wg sync.WaitGroup
	const writers = 8
	const perWriter = 50
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				cache.Set(tenantID, models.Snapshot{})
			}
		}()
	}
	wg.Wait()

	_, version, ok := cache.Get(tenantID)
	if !ok || version != writers*perWriter {
		t.Fatalf("final version = %d, want %d", version, writers*perWriter)
	}
}
