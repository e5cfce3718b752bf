package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

// APISource fetches structured JSON from a lottery results API.
type APISource struct {
	desc      model.SourceDescriptor
	lotteryID string
	reg       *registry.Registry
	client    *http.Client
}

func (s *APISource) Descriptor() model.SourceDescriptor { return s.desc }

// apiResponse is the expected JSON shape of the results API.
type apiResponse struct {
	Results []struct {
		Date   string `json:"date"`
		Hour   string `json:"hour"`
		Animal string `json:"animal"`
		Number string `json:"number"`
	} `json:"results"`
}

func (s *APISource) Fetch(ctx context.Context, kind model.RequestKind) ([]model.HistoryEntry, error) {
	endpoint := s.desc.Endpoint
	if kind == model.RequestHistory {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "scope=history"
	}

	body, err := doGet(ctx, s.client, endpoint, s.desc.Headers)
	if err != nil {
		return nil, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode api response: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		raw := r.Animal
		if raw == "" {
			raw = r.Number
		}
		animal, ok := s.reg.Resolve(raw)
		if !ok || r.Hour == "" {
			continue
		}
		date := r.Date
		if date == "" {
			date = today()
		}
		entries = append(entries, model.HistoryEntry{Date: date, Slot: r.Hour, Animal: animal, Raw: raw})
	}
	return entries, nil
}
