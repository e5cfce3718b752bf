package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
	"AnimalitoSentinel/internal/scraper"
)

// ScrapeSource fetches raw markup — through zero or more CORS relays, then
// directly — and runs it through the pattern extractor. Relays that wrap the
// page in JSON (allorigins style) are unwrapped transparently.
type ScrapeSource struct {
	desc      model.SourceDescriptor
	lotteryID string
	reg       *registry.Registry
	relays    []string
	client    *http.Client
}

func (s *ScrapeSource) Descriptor() model.SourceDescriptor { return s.desc }

var scrapeHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "es-ES,es;q=0.9,en;q=0.8",
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
}

func (s *ScrapeSource) Fetch(ctx context.Context, _ model.RequestKind) ([]model.HistoryEntry, error) {
	var lastErr error
	for _, relay := range s.relays {
		entries, err := s.fetchVia(ctx, relay)
		if err != nil {
			log.Printf("[WARN] relay %s for %s failed: %v", relay, s.desc.Name, err)
			lastErr = err
			continue
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	// Direct fetch as last attempt.
	entries, err := s.fetchVia(ctx, "")
	if err != nil {
		if lastErr != nil {
			return nil, fmt.Errorf("all relays failed (%v); direct fetch: %w", lastErr, err)
		}
		return nil, err
	}
	return entries, nil
}

func (s *ScrapeSource) fetchVia(ctx context.Context, relay string) ([]model.HistoryEntry, error) {
	endpoint := s.desc.Endpoint
	if relay != "" {
		endpoint = relay + url.QueryEscape(s.desc.Endpoint)
	}

	body, err := doGet(ctx, s.client, endpoint, scrapeHeaders)
	if err != nil {
		return nil, err
	}

	markup := string(body)
	if relay != "" && strings.Contains(relay, "allorigins") {
		var wrapped struct {
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("unwrap relay response: %w", err)
		}
		markup = wrapped.Contents
	}
	if len(markup) < 100 {
		return nil, fmt.Errorf("empty or implausibly short markup (%d bytes)", len(markup))
	}

	date := today()
	draws := scraper.Extract(markup)
	entries := make([]model.HistoryEntry, 0, len(draws))
	for _, d := range draws {
		animal, ok := s.reg.Resolve(d.Raw)
		if !ok {
			log.Printf("[WARN] %s: unresolved animal text %q, dropping", s.desc.Name, d.Raw)
			continue
		}
		entries = append(entries, model.HistoryEntry{Date: date, Slot: d.Slot, Animal: animal, Raw: d.Raw})
	}
	return entries, nil
}
