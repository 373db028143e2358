// Package config provides configuration loading for brainlib.
//
// Configuration is loaded from environment variables with sensible defaults.
// The provider credential (OPENAI_API_KEY) has no default: Validate rejects a
// configuration without it so the daemon refuses to start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingAPIKey is returned by Validate when no provider credential is set.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Config holds the complete brainlib configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Provider      ProviderConfig      `koanf:"openai"`
	Observability ObservabilityConfig `koanf:"otel"`
	Upload        UploadConfig        `koanf:"upload"`
	Logging       LoggingConfig       `koanf:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	BodyLimit       string        `koanf:"body_limit"` // echo size notation, e.g. "32M"
}

// ProviderConfig holds settings for the hosted RAG provider.
type ProviderConfig struct {
	APIKey           Secret        `koanf:"api_key"`
	BaseURL          string        `koanf:"base_url"`
	Model            string        `koanf:"model"`
	FilePurpose      string        `koanf:"file_purpose"`
	Timeout          time.Duration `koanf:"timeout"`
	RateLimit        float64       `koanf:"rate_limit"` // requests per second
	Burst            int           `koanf:"burst"`
	ListPageSize     int           `koanf:"list_page_size"`
	DefaultStoreName string        `koanf:"default_store_name"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable"`
	ServiceName     string `koanf:"service_name"`
	Endpoint        string `koanf:"endpoint"`
	Protocol        string `koanf:"protocol"`
	Insecure        bool   `koanf:"insecure"`
	MetricsEnabled  bool   `koanf:"metrics_enabled"`
}

// UploadConfig controls document upload handling.
type UploadConfig struct {
	ScanSecrets bool `koanf:"scan_secrets"`
	// SecretsAllowList adds patterns whose matches the scanner ignores.
	// Only settable from the config file.
	SecretsAllowList []string `koanf:"secrets_allow_list"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults shared by Load and LoadWithFile.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 8000
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultBodyLimit        = "32M"
	DefaultBaseURL          = "https://api.openai.com"
	DefaultModel            = "gpt-4.1"
	DefaultFilePurpose      = "assistants"
	DefaultProviderTimeout  = 60 * time.Second
	DefaultRateLimit        = 5.0
	DefaultBurst            = 10
	DefaultListPageSize     = 100
	DefaultStoreName        = "my_knowledge_base"
	DefaultServiceName      = "brainlib"
	DefaultOTELEndpoint     = "localhost:4317"
	DefaultOTELProtocol     = "grpc"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	maxProviderListPageSize = 100
)

// Load loads configuration from environment variables with defaults.
//
// Environment variables:
//   - OPENAI_API_KEY: provider credential (required)
//   - SERVER_HOST: listen host (default: 0.0.0.0)
//   - SERVER_PORT: HTTP server port (default: 8000)
//   - SERVER_SHUTDOWN_TIMEOUT: graceful shutdown timeout (default: 10s)
//   - SERVER_BODY_LIMIT: maximum request body (default: 32M)
//   - OPENAI_BASE_URL: provider API root (default: https://api.openai.com)
//   - OPENAI_MODEL: model used for answers (default: gpt-4.1)
//   - OPENAI_FILE_PURPOSE: purpose tag for uploads (default: assistants)
//   - OPENAI_TIMEOUT: outbound request timeout (default: 60s)
//   - OPENAI_RATE_LIMIT: outbound requests per second (default: 5)
//   - OPENAI_BURST: outbound burst size (default: 10)
//   - OPENAI_LIST_PAGE_SIZE: page size when listing store files (default: 100)
//   - BRAINLIB_DEFAULT_STORE_NAME: name used when none is given (default: my_knowledge_base)
//   - OTEL_ENABLE: enable OpenTelemetry export (default: false)
//   - OTEL_SERVICE_NAME: service name (default: brainlib)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector endpoint (default: localhost:4317)
//   - OTEL_EXPORTER_OTLP_PROTOCOL: grpc or http/protobuf (default: grpc)
//   - UPLOAD_SCAN_SECRETS: reject text uploads containing secrets (default: false)
//   - LOG_LEVEL, LOG_FORMAT: logging (default: info, json)
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", DefaultHost),
			Port:            getEnvInt("SERVER_PORT", DefaultPort),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
			BodyLimit:       getEnvString("SERVER_BODY_LIMIT", DefaultBodyLimit),
		},
		Provider: ProviderConfig{
			APIKey:           Secret(os.Getenv("OPENAI_API_KEY")),
			BaseURL:          getEnvString("OPENAI_BASE_URL", DefaultBaseURL),
			Model:            getEnvString("OPENAI_MODEL", DefaultModel),
			FilePurpose:      getEnvString("OPENAI_FILE_PURPOSE", DefaultFilePurpose),
			Timeout:          getEnvDuration("OPENAI_TIMEOUT", DefaultProviderTimeout),
			RateLimit:        getEnvFloat("OPENAI_RATE_LIMIT", DefaultRateLimit),
			Burst:            getEnvInt("OPENAI_BURST", DefaultBurst),
			ListPageSize:     getEnvInt("OPENAI_LIST_PAGE_SIZE", DefaultListPageSize),
			DefaultStoreName: getEnvString("BRAINLIB_DEFAULT_STORE_NAME", DefaultStoreName),
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: getEnvBool("OTEL_ENABLE", false),
			ServiceName:     getEnvString("OTEL_SERVICE_NAME", DefaultServiceName),
			Endpoint:        getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", DefaultOTELEndpoint),
			Protocol:        getEnvString("OTEL_EXPORTER_OTLP_PROTOCOL", DefaultOTELProtocol),
			Insecure:        getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			MetricsEnabled:  getEnvBool("OTEL_METRICS_ENABLED", true),
		},
		Upload: UploadConfig{
			ScanSecrets: getEnvBool("UPLOAD_SCAN_SECRETS", false),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", DefaultLogLevel),
			Format: getEnvString("LOG_FORMAT", DefaultLogFormat),
		},
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the provider API key is empty (ErrMissingAPIKey)
//   - server port is not between 1 and 65535
//   - shutdown timeout is not positive
//   - provider base URL, model, rate limit, burst or page size are unusable
//   - service name is empty (when telemetry is enabled)
func (c *Config) Validate() error {
	if !c.Provider.APIKey.IsSet() {
		return ErrMissingAPIKey
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Provider.BaseURL == "" {
		return errors.New("provider base URL is required")
	}
	if c.Provider.Model == "" {
		return errors.New("provider model is required")
	}
	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("provider rate limit must be positive, got %v", c.Provider.RateLimit)
	}
	if c.Provider.Burst < 1 {
		return fmt.Errorf("provider burst must be at least 1, got %d", c.Provider.Burst)
	}
	if c.Provider.ListPageSize < 1 || c.Provider.ListPageSize > maxProviderListPageSize {
		return fmt.Errorf("invalid list page size: %d (must be 1-%d)", c.Provider.ListPageSize, maxProviderListPageSize)
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
