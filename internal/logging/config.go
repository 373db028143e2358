package logging

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/brainlib/internal/config"
)

// Config holds logging configuration.
type Config struct {
	Level     zapcore.Level
	Format    string // json or console
	Output    OutputConfig
	Sampling  SamplingConfig
	AddCaller bool
	Fields    map[string]string
	Redaction RedactionConfig
}

// OutputConfig controls where logs are written.
type OutputConfig struct {
	Stdout bool
	OTEL   bool
}

// SamplingConfig limits repeated records below warn level. Within each Tick,
// the first Initial records with a given message are kept, then every
// Thereafter-th.
type SamplingConfig struct {
	Enabled    bool
	Tick       time.Duration
	Initial    int
	Thereafter int
}

// RedactionConfig lists what is masked before a record is written.
type RedactionConfig struct {
	Enabled bool
	// Keys are field names whose values are never written (case insensitive).
	Keys []string
	// Patterns are replaced wherever they occur in messages and string values.
	Patterns []string
}

const maxPatternLen = 200

// NewDefaultConfig returns the production logging policy.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Output: OutputConfig{Stdout: true},
		Sampling: SamplingConfig{
			Enabled:    true,
			Tick:       time.Second,
			Initial:    100,
			Thereafter: 10,
		},
		AddCaller: true,
		Fields:    map[string]string{"service": "brainlib"},
		Redaction: RedactionConfig{
			Enabled: true,
			Keys: []string{
				"api_key", "openai_api_key", "authorization",
				"password", "token", "question",
			},
			Patterns: []string{
				`\bsk-(?:proj-|svcacct-|admin-)?[A-Za-z0-9_\-]{16,}`,
				`(?i)bearer\s+[A-Za-z0-9._~+/\-]+=*`,
			},
		},
	}
}

// FromAppConfig builds a logging config from the application's log settings.
func FromAppConfig(app config.LoggingConfig, serviceName string) (*Config, error) {
	cfg := NewDefaultConfig()

	if app.Level != "" {
		level, err := ParseLevel(app.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = level
	}
	if app.Format != "" {
		cfg.Format = app.Format
	}
	if serviceName != "" {
		cfg.Fields["service"] = serviceName
	}

	return cfg, cfg.Validate()
}

// ParseLevel accepts zap level names plus "trace".
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.EqualFold(s, "trace") {
		return TraceLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	switch {
	case c.Format != "json" && c.Format != "console":
		return fmt.Errorf("log format must be json or console, got %q", c.Format)
	case !c.Output.Stdout && !c.Output.OTEL:
		return errors.New("no log output enabled")
	case c.Sampling.Enabled && (c.Sampling.Tick <= 0 || c.Sampling.Initial < 1):
		return errors.New("sampling needs a positive tick and initial count")
	}

	for k, v := range c.Fields {
		if k == "" || v == "" {
			return fmt.Errorf("static log field %q=%q must have a key and a value", k, v)
		}
	}

	for _, p := range c.Redaction.Patterns {
		if len(p) > maxPatternLen {
			return fmt.Errorf("redaction pattern longer than %d chars: %q", maxPatternLen, p)
		}
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redaction pattern %q: %w", p, err)
		}
	}
	return nil
}
