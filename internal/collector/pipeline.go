package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"AnimalitoSentinel/internal/cache"
	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

// TTLPolicy holds one cache TTL per source kind plus one for the
// extended-history request kind.
type TTLPolicy struct {
	API       time.Duration
	Scraping  time.Duration
	Community time.Duration
	History   time.Duration
}

// Config wires a Pipeline for one lottery variant.
type Config struct {
	LotteryID    string
	Slots        []string // variant slot times, ascending "HH:MM"
	Sources      []Source // already priority-sorted (BuildSources)
	Cache        cache.Store
	Registry     *registry.Registry
	RequestDelay time.Duration // minimum spacing between outbound rounds
	Timeout      time.Duration // per source attempt
	TTL          TTLPolicy
	Retention    time.Duration // hard cache retention bound
}

// Pipeline orchestrates the source chain with cache-then-fallback
// degradation. Acquire is a total function: it always returns a well-formed
// result set and never propagates a fault.
type Pipeline struct {
	cfg Config

	mu          sync.Mutex
	lastRequest time.Time

	now func() time.Time
}

// NewPipeline creates a pipeline, filling in default timings.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	return &Pipeline{cfg: cfg, now: time.Now}
}

// cachedPayload is what gets wrapped in the cache envelope.
type cachedPayload struct {
	Entries []model.HistoryEntry `json:"entries"`
	Source  string               `json:"source"`
}

func cacheKey(lotteryID string, kind model.RequestKind) string {
	return fmt.Sprintf("animalito:%s:%s", lotteryID, kind)
}

// Acquire runs the acquisition policy in strict order: rate limit, fresh
// cache, priority-ordered sources (first non-empty success wins), stale
// cache, synthetic generator.
func (p *Pipeline) Acquire(ctx context.Context, kind model.RequestKind) *model.ResultSet {
	p.throttle(ctx)

	key := cacheKey(p.cfg.LotteryID, kind)
	if rs, ok := p.fromCache(ctx, key, kind, false); ok {
		return rs
	}

	p.markRequest()
	for _, src := range p.cfg.Sources {
		d := src.Descriptor()
		if !d.IsActive {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		entries, err := src.Fetch(callCtx, kind)
		cancel()
		if err != nil {
			log.Printf("[WARN] source %s (%s/%s): %v", d.Name, p.cfg.LotteryID, kind, err)
			continue
		}
		if len(entries) == 0 {
			log.Printf("[WARN] source %s (%s/%s): zero resolved entries", d.Name, p.cfg.LotteryID, kind)
			continue
		}

		rs := &model.ResultSet{
			LotteryID:  p.cfg.LotteryID,
			Kind:       kind,
			Entries:    entries,
			Source:     d.Name,
			Provenance: model.ProvenanceLive,
			FetchedAt:  p.now(),
		}
		p.writeCache(ctx, key, rs, p.ttlFor(d.Kind, kind))
		log.Printf("[INFO] %s/%s: %d entries from %s", p.cfg.LotteryID, kind, len(entries), d.Name)
		return rs
	}

	if rs, ok := p.fromCache(ctx, key, kind, true); ok {
		log.Printf("[WARN] %s/%s: all sources exhausted, serving stale cache", p.cfg.LotteryID, kind)
		return rs
	}

	log.Printf("[WARN] %s/%s: no sources, no cache — generating synthetic results", p.cfg.LotteryID, kind)
	return p.synthetic(kind)
}

func (p *Pipeline) ttlFor(sourceKind model.SourceKind, requestKind model.RequestKind) time.Duration {
	if requestKind == model.RequestHistory {
		return p.cfg.TTL.History
	}
	switch sourceKind {
	case model.SourceAPI:
		return p.cfg.TTL.API
	case model.SourceCommunity:
		return p.cfg.TTL.Community
	default:
		return p.cfg.TTL.Scraping
	}
}

// throttle enforces the minimum spacing relative to the last outbound round.
func (p *Pipeline) throttle(ctx context.Context) {
	if p.cfg.RequestDelay <= 0 {
		return
	}
	p.mu.Lock()
	last := p.lastRequest
	p.mu.Unlock()
	if last.IsZero() {
		return
	}
	remaining := p.cfg.RequestDelay - p.now().Sub(last)
	if remaining <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(remaining):
	}
}

func (p *Pipeline) markRequest() {
	p.mu.Lock()
	p.lastRequest = p.now()
	p.mu.Unlock()
}

func (p *Pipeline) fromCache(ctx context.Context, key string, kind model.RequestKind, allowExpired bool) (*model.ResultSet, bool) {
	raw, found, err := p.cfg.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] cache get %s: %v", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	entry, err := cache.DecodeEntry(raw)
	if err != nil {
		// Malformed cached JSON is a miss, not a fault.
		log.Printf("[WARN] cache entry %s corrupt, ignoring: %v", key, err)
		return nil, false
	}
	fresh := entry.Fresh(p.now())
	if !fresh && !allowExpired {
		return nil, false
	}
	var payload cachedPayload
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		log.Printf("[WARN] cache payload %s corrupt, ignoring: %v", key, err)
		return nil, false
	}
	provenance := model.ProvenanceCached
	if !fresh {
		provenance = model.ProvenanceStale
	}
	return &model.ResultSet{
		LotteryID:  p.cfg.LotteryID,
		Kind:       kind,
		Entries:    payload.Entries,
		Source:     payload.Source,
		Provenance: provenance,
		FetchedAt:  time.UnixMilli(entry.Timestamp),
	}, true
}

func (p *Pipeline) writeCache(ctx context.Context, key string, rs *model.ResultSet, ttl time.Duration) {
	env, err := cache.NewEntry(cachedPayload{Entries: rs.Entries, Source: rs.Source}, p.now(), ttl)
	if err != nil {
		log.Printf("[WARN] encode cache entry %s: %v", key, err)
		return
	}
	if err := p.cfg.Cache.Set(ctx, key, env, p.cfg.Retention); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
}
