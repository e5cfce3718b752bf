package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

// Source is one entry of the acquisition chain. Fetch returns fully
// resolved entries; unresolvable animals are dropped, never fatal.
type Source interface {
	Descriptor() model.SourceDescriptor
	Fetch(ctx context.Context, kind model.RequestKind) ([]model.HistoryEntry, error)
}

// NewHTTPClient builds the outbound client with optional proxy support.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// BuildSources instantiates sources for one lottery variant from its
// descriptors, sorted by ascending priority. The sort is stable so equal
// priorities keep declaration order.
func BuildSources(lotteryID string, descs []model.SourceDescriptor, reg *registry.Registry, relays []string, client *http.Client) []Source {
	sorted := make([]model.SourceDescriptor, len(descs))
	copy(sorted, descs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	sources := make([]Source, 0, len(sorted))
	for _, d := range sorted {
		switch d.Kind {
		case model.SourceAPI:
			sources = append(sources, &APISource{desc: d, lotteryID: lotteryID, reg: reg, client: client})
		case model.SourceScraping:
			sources = append(sources, &ScrapeSource{desc: d, lotteryID: lotteryID, reg: reg, relays: relays, client: client})
		case model.SourceCommunity:
			sources = append(sources, &CommunitySource{desc: d, lotteryID: lotteryID, reg: reg, client: client})
		}
	}
	return sources
}

func doGet(ctx context.Context, client *http.Client, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func today() string { return time.Now().Format("2006-01-02") }
