package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

const systemPrompt = "Eres un analista estadístico de loterías de animalitos. " +
	"Recibes un ranking calculado por un modelo híbrido (frecuencia, tendencia, Markov) " +
	"y lo refinas. Responde ÚNICAMENTE con JSON válido de la forma " +
	`{"predictions":[{"identifier":"...","probability":0.0,"confidenceTier":"HIGH|MEDIUM|LOW","rationale":"..."}]}` +
	" sin texto adicional, sin markdown."

// minAccept is the smallest refined ranking worth trusting; anything
// shorter means the model ignored the instructions and the statistical
// ranking stands.
const minAccept = 3

// Client refines a statistical ranking through a chat-completions
// endpoint. Refinement is strictly optional: every error path leaves the
// caller with the original ranking.
type Client struct {
	client  *http.Client
	reg     *registry.Registry
	baseURL string
	apiKey  string
	model   string
}

// NewClient builds a refinement client. baseURL points at an
// OpenAI-compatible API root, e.g. https://api.deepseek.com.
func NewClient(baseURL, apiKey, modelName string, reg *registry.Registry) *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		reg:     reg,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   modelName,
	}
}

// Enabled reports whether the client has enough configuration to call out.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.apiKey != "" && c.model != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type refinedEntry struct {
	Identifier  string  `json:"identifier"`
	Probability float64 `json:"probability"`
	Tier        string  `json:"confidenceTier"`
	Rationale   string  `json:"rationale"`
}

type refinedPayload struct {
	Predictions []refinedEntry `json:"predictions"`
}

func retry(attempts int, sleep time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(sleep)
	}
	return err
}

// Refine sends the statistical ranking for the given lottery and parses
// the refined one back. Identifiers that do not resolve against the
// registry are dropped; fewer than minAccept survivors is an error.
func (c *Client) Refine(ctx context.Context, lotteryName string, preds []model.PredictionResult, historyLen int) ([]model.PredictionResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("oracle not configured")
	}

	userPrompt, err := buildUserPrompt(lotteryName, preds, historyLen)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	url := c.baseURL + "/chat/completions"

	var cr chatResponse
	err = retry(3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
		}
		return json.NewDecoder(resp.Body).Decode(&cr)
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty choices")
	}
	return c.parseRefined(cr.Choices[0].Message.Content, len(preds))
}

// parseRefined extracts the refined ranking from the model output. Models
// sometimes wrap JSON in prose or code fences, so we cut to the outermost
// object first.
func (c *Client) parseRefined(content string, limit int) ([]model.PredictionResult, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var payload refinedPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode refined payload: %w", err)
	}

	out := make([]model.PredictionResult, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		animal, ok := c.reg.Resolve(p.Identifier)
		if !ok {
			log.Printf("[WARN] oracle returned unknown identifier %q, dropped", p.Identifier)
			continue
		}
		prob := p.Probability
		if prob < 0 {
			prob = 0
		}
		if prob > 100 {
			prob = 100
		}
		rationale := strings.TrimSpace(p.Rationale)
		if rationale == "" {
			rationale = "Refinado por el modelo de lenguaje."
		}
		out = append(out, model.PredictionResult{
			Animal:      animal,
			Probability: prob,
			Confidence:  tierFromString(p.Tier),
			Rationale:   rationale,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) < minAccept {
		return nil, fmt.Errorf("refined ranking too short: %d valid entries", len(out))
	}
	return out, nil
}

func buildUserPrompt(lotteryName string, preds []model.PredictionResult, historyLen int) (string, error) {
	type promptEntry struct {
		Identifier  string  `json:"identifier"`
		Name        string  `json:"name"`
		Probability float64 `json:"probability"`
		Tier        string  `json:"confidenceTier"`
	}
	entries := make([]promptEntry, 0, len(preds))
	for _, p := range preds {
		entries = append(entries, promptEntry{
			Identifier:  p.Animal.Code,
			Name:        p.Animal.Name,
			Probability: p.Probability,
			Tier:        string(p.Confidence),
		})
	}
	ranking, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Lotería: %s. Sorteos en el historial: %d.\nRanking estadístico actual:\n%s\nRefina este ranking.",
		lotteryName, historyLen, ranking,
	), nil
}

func tierFromString(s string) model.ConfidenceTier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(model.TierHigh):
		return model.TierHigh
	case string(model.TierMedium):
		return model.TierMedium
	default:
		return model.TierLow
	}
}
