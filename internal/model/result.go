package model

import "time"

// RequestKind selects what the acquisition pipeline should fetch.
type RequestKind string

const (
	RequestToday   RequestKind = "today"
	RequestHistory RequestKind = "history"
)

// Provenance indicates how trustworthy a result set is.
type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceCached    Provenance = "cached"
	ProvenanceStale     Provenance = "stale"
	ProvenanceSynthetic Provenance = "synthetic"
)

// HistoryEntry is a single past draw outcome. Immutable once created;
// Animal is nil only while resolution is still pending, and entries that
// never resolve are dropped before they reach the history store.
type HistoryEntry struct {
	Date   string  // calendar day, "2006-01-02"
	Slot   string  // time-of-day, "HH:MM"
	Animal *Animal // resolved registry entry
	Raw    string  // source text preserved for audit
}

// ResultSet is the acquisition pipeline's always-well-formed output.
type ResultSet struct {
	LotteryID  string
	Kind       RequestKind
	Entries    []HistoryEntry
	Source     string
	Provenance Provenance
	FetchedAt  time.Time
}
