package helpkb

import (
	"context"
	"net/url"
	"time"
)

// Project holds the settings of a knowledge base. The settings are fixed
// when the project is built so later runs embed with the same model.
type Project struct {
	Name      string   `yaml:"name"`
	BaseURL   string   `yaml:"base_url"`
	Blocklist []string `yaml:"blocklist,omitempty"`
	Include   []string `yaml:"include,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`

	// Store selects the content store backend: "fs" or "sqlite".
	Store string `yaml:"store"`

	// Provider selects the language and embedding models: "gemini",
	// "ollama" or "static".
	Provider       string `yaml:"provider"`
	ChatModel      string `yaml:"chat_model,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`

	// Fetcher selects how pages are downloaded: "http" or "rod".
	Fetcher string `yaml:"fetcher"`

	// PreExtract selects a main-content extractor run before trimming:
	// "none", "trafilatura" or "readability".
	PreExtract string `yaml:"pre_extract"`

	// RequestsPerSecond limits fetches per host. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// ApproximateAbove switches an index family to approximate HNSW search
	// once it holds more records than this. Zero keeps search exact.
	ApproximateAbove int `yaml:"approximate_above,omitempty"`

	CreatedAt time.Time `yaml:"created_at"`
}

// Validate returns an error if the project contains invalid fields.
func (p *Project) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "project name required")
	}
	if p.BaseURL == "" {
		return Errorf(EINVALID, "project base URL required")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "invalid base URL %q", p.BaseURL)
	}
	switch p.Store {
	case "fs", "sqlite":
	default:
		return Errorf(EINVALID, "unknown store %q", p.Store)
	}
	switch p.Provider {
	case "gemini", "ollama", "static":
	default:
		return Errorf(EINVALID, "unknown provider %q", p.Provider)
	}
	switch p.Fetcher {
	case "http", "rod":
	default:
		return Errorf(EINVALID, "unknown fetcher %q", p.Fetcher)
	}
	switch p.PreExtract {
	case "none", "trafilatura", "readability":
	default:
		return Errorf(EINVALID, "unknown pre-extractor %q", p.PreExtract)
	}
	if p.RequestsPerSecond < 0 {
		return Errorf(EINVALID, "requests per second must not be negative")
	}
	if p.ApproximateAbove < 0 {
		return Errorf(EINVALID, "approximate search threshold must not be negative")
	}
	return nil
}

// Scope returns the crawl scope described by the project.
func (p *Project) Scope() (*Scope, error) {
	filter, err := NewURLFilter(p.Include, p.Exclude)
	if err != nil {
		return nil, err
	}
	return &Scope{BaseURL: p.BaseURL, Blocklist: p.Blocklist, Filter: filter}, nil
}

// ProjectStore persists project settings.
type ProjectStore interface {
	// CreateProject saves new settings. Returns ECONFLICT if the project
	// already exists.
	CreateProject(ctx context.Context, p *Project) error

	// FindProject loads the settings. Returns ENOTFOUND if the project
	// does not exist.
	FindProject(ctx context.Context) (*Project, error)
}
