package openai

import (
	"errors"
	"time"

	"github.com/fyrsmithlabs/brainlib/internal/config"
)

const (
	defaultBaseURL     = "https://api.openai.com"
	defaultModel       = "gpt-4.1"
	defaultFilePurpose = "assistants"
	defaultTimeout     = 60 * time.Second
	defaultRateLimit   = 5.0 // requests per second
	defaultBurst       = 10
	defaultPageSize    = 100
	maxPageSize        = 100
)

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = errors.New("openai API key required")

// Config configures a Client.
type Config struct {
	APIKey      string `json:"-"`
	BaseURL     string
	Model       string
	FilePurpose string
	Timeout     time.Duration
	RateLimit   float64
	Burst       int
	PageSize    int
}

// ConfigFromApp converts the application's provider settings.
func ConfigFromApp(p config.ProviderConfig) Config {
	return Config{
		APIKey:      p.APIKey.Value(),
		BaseURL:     p.BaseURL,
		Model:       p.Model,
		FilePurpose: p.FilePurpose,
		Timeout:     p.Timeout,
		RateLimit:   p.RateLimit,
		Burst:       p.Burst,
		PageSize:    p.ListPageSize,
	}
}

// withDefaults fills zero values.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.FilePurpose == "" {
		c.FilePurpose = defaultFilePurpose
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}
	if c.PageSize <= 0 || c.PageSize > maxPageSize {
		c.PageSize = defaultPageSize
	}
	return c
}
