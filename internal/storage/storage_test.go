package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

func TestSnapshotStore(t *testing.T) {
	store := New()

	if _, ok := store.Get(); ok {
		t.Fatal("Expected an empty store")
	}

	store.Set(Entry{ID: "one", Snapshot: views.Snapshot{Books: []models.CatalogBook{{ID: "a"}}}})
	store.Set(Entry{ID: "two"})

	entry, ok := store.Get()
	if !ok || entry.ID != "two" {
		t.Errorf("Expected the latest entry, got %+v", entry)
	}

	history := store.History()
	if len(history) != 2 || history[0] != "one" || history[1] != "two" {
		t.Errorf("Unexpected history %v", history)
	}
}

func TestSnapshotStoreConcurrentAccess(t *testing.T) {
	store := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.Set(Entry{ID: fmt.Sprintf("s%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			store.Get()
			store.History()
		}()
	}
	wg.Wait()

	if len(store.History()) != 50 {
		t.Errorf("Expected 50 entries, got %d", len(store.History()))
	}
}
