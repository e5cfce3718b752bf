package model

// SourceKind classifies how a data source is queried and parsed.
type SourceKind string

const (
	SourceAPI       SourceKind = "api"
	SourceScraping  SourceKind = "scraping"
	SourceCommunity SourceKind = "community"
)

// SourceDescriptor describes one entry of the acquisition chain.
// Lower Priority is tried first; ties keep declaration order.
type SourceDescriptor struct {
	Name     string            `yaml:"name"`
	Endpoint string            `yaml:"endpoint"`
	Kind     SourceKind        `yaml:"kind"`
	Priority int               `yaml:"priority"`
	IsActive bool              `yaml:"is_active"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}
