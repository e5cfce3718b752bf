package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the injected key-value cache every component receives by
// construction. ttl is a hard retention bound for backends that support
// expiry; logical freshness lives in the Entry envelope so stale records
// stay readable as a last-resort fallback.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Entry is the JSON envelope persisted for every cached result set.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	TTL       int64           `json:"ttl"`       // milliseconds
}

// NewEntry wraps a payload in a timestamped envelope.
func NewEntry(payload any, now time.Time, ttl time.Duration) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Entry{
		Payload:   raw,
		Timestamp: now.UnixMilli(),
		TTL:       ttl.Milliseconds(),
	})
}

// DecodeEntry parses an envelope. A decode error is a cache miss to callers.
func DecodeEntry(b []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Fresh reports whether the entry is still within its TTL.
func (e *Entry) Fresh(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp < e.TTL
}
