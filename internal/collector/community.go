package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

// minVotes is the crowd-verification threshold below which a reported draw
// is not trusted.
const minVotes = 3

// CommunitySource reads crowd-sourced results and carries the optional
// fire-and-forget report write path.
type CommunitySource struct {
	desc      model.SourceDescriptor
	lotteryID string
	reg       *registry.Registry
	client    *http.Client
}

func (s *CommunitySource) Descriptor() model.SourceDescriptor { return s.desc }

type communityResponse struct {
	Draws []struct {
		Date     string `json:"date"`
		Hour     string `json:"hour"`
		Animal   string `json:"animal"`
		Verified bool   `json:"verified"`
		Votes    int    `json:"votes"`
	} `json:"draws"`
}

func (s *CommunitySource) Fetch(ctx context.Context, kind model.RequestKind) ([]model.HistoryEntry, error) {
	sep := "?"
	if strings.Contains(s.desc.Endpoint, "?") {
		sep = "&"
	}
	endpoint := fmt.Sprintf("%s%slottery=%s&date=%s", s.desc.Endpoint, sep, s.lotteryID, today())
	if kind == model.RequestHistory {
		endpoint += "&scope=history"
	}

	body, err := doGet(ctx, s.client, endpoint, s.desc.Headers)
	if err != nil {
		return nil, err
	}

	var parsed communityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode community response: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(parsed.Draws))
	for _, d := range parsed.Draws {
		if !d.Verified || d.Votes <= minVotes {
			continue
		}
		animal, ok := s.reg.Resolve(d.Animal)
		if !ok || d.Hour == "" {
			continue
		}
		date := d.Date
		if date == "" {
			date = today()
		}
		entries = append(entries, model.HistoryEntry{Date: date, Slot: d.Hour, Animal: animal, Raw: d.Animal})
	}
	return entries, nil
}

// Report submits a user-observed result to the community endpoint.
// Fire-and-forget: the outcome never affects local state, failures are
// only logged.
func (s *CommunitySource) Report(ctx context.Context, slot string, animal *model.Animal) {
	payload := map[string]any{
		"report_id": uuid.NewString(),
		"lottery":   s.lotteryID,
		"slot":      slot,
		"animal":    animal.Name,
		"number":    animal.Code,
		"date":      today(),
		"timestamp": time.Now().UnixMilli(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WARN] marshal community report: %v", err)
		return
	}

	endpoint := strings.TrimSuffix(s.desc.Endpoint, "/") + "/report"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("[WARN] build community report request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[WARN] community report failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[WARN] community report rejected: status %d", resp.StatusCode)
		return
	}
	log.Printf("[INFO] reported %s %s (%s) to community", slot, animal.Name, animal.Code)
}
