package storage

import (
	"sync"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// Entry is one loaded snapshot.
type Entry struct {
	ID       string
	Snapshot views.Snapshot
	LoadedAt time.Time
}

// SnapshotStore holds the snapshot the server currently answers from.
// Readers get an immutable copy of the entry; Set swaps it atomically.
type SnapshotStore struct {
	current *Entry
	history []string
	mu      sync.RWMutex
}

func New() *SnapshotStore {
	return &SnapshotStore{}
}

// Get returns the current snapshot, or false before the first Set.
func (s *SnapshotStore) Get() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Entry{}, false
	}
	return *s.current, true
}

func (s *SnapshotStore) Set(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &entry
	s.history = append(s.history, entry.ID)
}

// History lists the IDs of every snapshot set so far, oldest first.
func (s *SnapshotStore) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, len(s.history))
	copy(result, s.history)
	return result
}
