package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// envAliases maps conventional variable names that do not follow the
// SECTION_FIELD pattern onto their config keys.
var envAliases = map[string]string{
	"BRAINLIB_DEFAULT_STORE_NAME": "openai.default_store_name",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_EXPORTER_OTLP_PROTOCOL": "otel.protocol",
	"OTEL_EXPORTER_OTLP_INSECURE": "otel.insecure",
}

// envSections are the config sections that environment variables may target.
var envSections = map[string]bool{
	"server": true,
	"openai": true,
	"otel":   true,
	"upload": true,
	"log":    true,
}

// Default returns a configuration populated with defaults only.
// The API key is left empty.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			BodyLimit:       DefaultBodyLimit,
		},
		Provider: ProviderConfig{
			BaseURL:          DefaultBaseURL,
			Model:            DefaultModel,
			FilePurpose:      DefaultFilePurpose,
			Timeout:          DefaultProviderTimeout,
			RateLimit:        DefaultRateLimit,
			Burst:            DefaultBurst,
			ListPageSize:     DefaultListPageSize,
			DefaultStoreName: DefaultStoreName,
		},
		Observability: ObservabilityConfig{
			ServiceName:    DefaultServiceName,
			Endpoint:       DefaultOTELEndpoint,
			Protocol:       DefaultOTELProtocol,
			Insecure:       true,
			MetricsEnabled: true,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_PORT, OPENAI_MODEL, etc.)
//  2. YAML config file (~/.config/brainlib/config.yaml)
//  3. Defaults
//
// The YAML file is optional. When present it must live in
// ~/.config/brainlib/ or /etc/brainlib/, be 0600 or 0400, and be at most 1MB.
//
// Environment variables map to keys by splitting on the first underscore:
//
//	SERVER_PORT -> server.port
//	OPENAI_API_KEY -> openai.api_key
//	UPLOAD_SCAN_SECRETS -> upload.scan_secrets
//
// The credential is normally supplied only through OPENAI_API_KEY.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "brainlib", "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Validate through the open descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}

		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKey maps an environment variable name to a config key.
// Variables outside the known sections are ignored.
func envKey(s string) string {
	if alias, ok := envAliases[s]; ok {
		return alias
	}

	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !envSections[parts[0]] {
		return ""
	}

	return parts[0] + "." + parts[1]
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Follow symlinks so they cannot escape the allowed directories.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	allowedDirs := []string{
		filepath.Join(home, ".config", "brainlib"),
		"/etc/brainlib",
	}

	for _, dir := range allowedDirs {
		if strings.HasPrefix(resolvedPath, dir) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/brainlib/ or /etc/brainlib/")
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
