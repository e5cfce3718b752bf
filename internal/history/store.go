package history

import (
	"sort"
	"sync"

	"AnimalitoSentinel/internal/model"
)

// DefaultCapacity bounds the retained window of past draws.
const DefaultCapacity = 200

// Store owns the bounded, newest-first collection of past draw outcomes for
// one lottery variant. Entries are immutable once admitted; readers only
// ever get snapshots.
type Store struct {
	mu        sync.Mutex
	capacity  int
	entries   []model.HistoryEntry
	synthetic map[string]bool // keys of entries admitted from synthetic sets
}

// NewStore creates a store with the given capacity (DefaultCapacity if <= 0).
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity, synthetic: make(map[string]bool)}
}

func key(e model.HistoryEntry) string { return e.Date + "|" + e.Slot }

// Merge admits a result set. Unresolved entries are dropped. An existing
// entry keeps its slot — except that real data always replaces a synthetic
// placeholder, and synthetic data never displaces anything. Returns how
// many entries were added or replaced.
func (s *Store) Merge(rs *model.ResultSet) int {
	if rs == nil {
		return 0
	}
	fromSynthetic := rs.Provenance == model.ProvenanceSynthetic

	s.mu.Lock()
	defer s.mu.Unlock()

	index := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		index[key(e)] = i
	}

	changed := 0
	for _, e := range rs.Entries {
		if e.Animal == nil || e.Date == "" || e.Slot == "" {
			continue
		}
		k := key(e)
		if i, exists := index[k]; exists {
			if s.synthetic[k] && !fromSynthetic {
				s.entries[i] = e
				delete(s.synthetic, k)
				changed++
			}
			continue
		}
		index[k] = len(s.entries)
		s.entries = append(s.entries, e)
		if fromSynthetic {
			s.synthetic[k] = true
		}
		changed++
	}

	// Newest first: by date, then by slot within the day.
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].Date != s.entries[j].Date {
			return s.entries[i].Date > s.entries[j].Date
		}
		return s.entries[i].Slot > s.entries[j].Slot
	})

	if len(s.entries) > s.capacity {
		for _, e := range s.entries[s.capacity:] {
			delete(s.synthetic, key(e))
		}
		s.entries = s.entries[:s.capacity]
	}
	return changed
}

// Snapshot returns a newest-first copy for engine construction.
func (s *Store) Snapshot() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ResultFor returns the known outcome for a given day and slot, if any.
func (s *Store) ResultFor(date, slot string) (*model.Animal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Date == date && e.Slot == slot {
			return e.Animal, true
		}
	}
	return nil, false
}
