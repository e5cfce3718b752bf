package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

func statisticalRanking(reg *registry.Registry, codes ...string) []model.PredictionResult {
	out := make([]model.PredictionResult, 0, len(codes))
	for i, c := range codes {
		a, ok := reg.ByCode(c)
		if !ok {
			panic("unknown code " + c)
		}
		out = append(out, model.PredictionResult{
			Animal:      a,
			Probability: float64(60 - 10*i),
			Confidence:  model.TierMedium,
			Rationale:   "base",
		})
	}
	return out
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestRefine_ParsesAndResolves(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		content := `{"predictions":[
			{"identifier":"12","probability":48.5,"confidenceTier":"HIGH","rationale":"repite"},
			{"identifier":"Leon","probability":22.0,"confidenceTier":"medium","rationale":"tendencia"},
			{"identifier":"05","probability":140.0,"confidenceTier":"LOW","rationale":""}
		]}`
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	reg := registry.New()
	c := NewClient(srv.URL, "sk-test", "deepseek-chat", reg)

	refined, err := c.Refine(context.Background(), "GUACHARO", statisticalRanking(reg, "12", "05", "17"), 120)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(refined) != 3 {
		t.Fatalf("got %d refined entries, want 3", len(refined))
	}
	if refined[0].Animal.Code != "12" || refined[0].Probability != 48.5 || refined[0].Confidence != model.TierHigh {
		t.Errorf("rank 1 = %+v", refined[0])
	}
	// Name identifiers resolve too, and tiers are case-insensitive.
	if refined[1].Animal.Name != "León" || refined[1].Confidence != model.TierMedium {
		t.Errorf("rank 2 = %+v", refined[1])
	}
	// Out-of-range probabilities clamp, empty rationales get a default.
	if refined[2].Probability != 100.0 || refined[2].Rationale == "" {
		t.Errorf("rank 3 = %+v", refined[2])
	}
}

func TestRefine_TrimsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := "```json\n{\"predictions\":[" +
			`{"identifier":"00","probability":30,"confidenceTier":"HIGH","rationale":"a"},` +
			`{"identifier":"01","probability":20,"confidenceTier":"MEDIUM","rationale":"b"},` +
			`{"identifier":"02","probability":10,"confidenceTier":"LOW","rationale":"c"}` +
			"]}\n```"
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	reg := registry.New()
	c := NewClient(srv.URL, "sk-test", "deepseek-chat", reg)
	refined, err := c.Refine(context.Background(), "GUACHARO", statisticalRanking(reg, "00", "01", "02"), 50)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if len(refined) != 3 || refined[0].Animal.Code != "00" {
		t.Errorf("refined = %+v", refined)
	}
}

func TestRefine_RejectsShortRanking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two of three identifiers are garbage, leaving one valid entry.
		content := `{"predictions":[
			{"identifier":"12","probability":50,"confidenceTier":"HIGH","rationale":"ok"},
			{"identifier":"99","probability":30,"confidenceTier":"LOW","rationale":"x"},
			{"identifier":"nope","probability":20,"confidenceTier":"LOW","rationale":"x"}
		]}`
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	reg := registry.New()
	c := NewClient(srv.URL, "sk-test", "deepseek-chat", reg)
	if _, err := c.Refine(context.Background(), "GUACHARO", statisticalRanking(reg, "12", "05", "17"), 10); err == nil {
		t.Fatal("expected error for a ranking with fewer than 3 valid entries")
	}
}

func TestRefine_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		content := `{"predictions":[
			{"identifier":"05","probability":40,"confidenceTier":"HIGH","rationale":"a"},
			{"identifier":"12","probability":30,"confidenceTier":"MEDIUM","rationale":"b"},
			{"identifier":"17","probability":20,"confidenceTier":"LOW","rationale":"c"}
		]}`
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	reg := registry.New()
	c := NewClient(srv.URL, "sk-test", "deepseek-chat", reg)
	refined, err := c.Refine(context.Background(), "LOTTO_ACTIVO", statisticalRanking(reg, "05", "12", "17"), 80)
	if err != nil {
		t.Fatalf("Refine after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
	if len(refined) != 3 {
		t.Errorf("got %d entries", len(refined))
	}
}

func TestEnabled(t *testing.T) {
	reg := registry.New()
	if NewClient("", "", "", reg).Enabled() {
		t.Error("unconfigured client reports enabled")
	}
	if !NewClient("https://api.example.com", "k", "m", reg).Enabled() {
		t.Error("configured client reports disabled")
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Error("nil client reports enabled")
	}
}
