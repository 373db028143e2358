package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// setupTestHome points HOME at a temp dir and creates the brainlib config dir.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "brainlib")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	return configDir
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	configDir := setupTestHome(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	configPath := filepath.Join(configDir, "config.yaml")
	yamlContent := `server:
  port: 9090
  shutdown_timeout: 3s

openai:
  model: gpt-4o
  default_store_name: yaml_kb

upload:
  scan_secrets: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Errorf("Provider.Model = %q, want gpt-4o", cfg.Provider.Model)
	}
	if cfg.Provider.DefaultStoreName != "yaml_kb" {
		t.Errorf("Provider.DefaultStoreName = %q, want yaml_kb", cfg.Provider.DefaultStoreName)
	}
	if !cfg.Upload.ScanSecrets {
		t.Error("Upload.ScanSecrets = false, want true")
	}
	if cfg.Provider.APIKey.Value() != "sk-from-env" {
		t.Errorf("Provider.APIKey not loaded from OPENAI_API_KEY")
	}
	// Untouched fields keep their defaults.
	if cfg.Provider.BaseURL != DefaultBaseURL {
		t.Errorf("Provider.BaseURL = %q, want %q", cfg.Provider.BaseURL, DefaultBaseURL)
	}
	if !cfg.Observability.Insecure {
		t.Error("Observability.Insecure = false, want default true")
	}
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	configDir := setupTestHome(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("BRAINLIB_DEFAULT_STORE_NAME", "env_kb")

	configPath := filepath.Join(configDir, "config.yaml")
	yamlContent := `server:
  port: 9090
openai:
  model: yaml-model
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env override)", cfg.Server.Port)
	}
	if cfg.Provider.Model != "env-model" {
		t.Errorf("Provider.Model = %q, want env-model", cfg.Provider.Model)
	}
	if cfg.Provider.DefaultStoreName != "env_kb" {
		t.Errorf("Provider.DefaultStoreName = %q, want env_kb", cfg.Provider.DefaultStoreName)
	}
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	configDir := setupTestHome(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadWithFile(filepath.Join(configDir, "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
}

func TestLoadWithFile_MissingAPIKey(t *testing.T) {
	configDir := setupTestHome(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadWithFile(filepath.Join(configDir, "config.yaml"))
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("LoadWithFile() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoadWithFile_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	configDir := setupTestHome(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 9090\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadWithFile(configPath); err == nil {
		t.Fatal("LoadWithFile() error = nil, want permissions error")
	}
}

func TestLoadWithFile_PathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	outside := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := LoadWithFile(outside); err == nil {
		t.Fatal("LoadWithFile() error = nil, want path validation error")
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SERVER_PORT":                 "server.port",
		"SERVER_SHUTDOWN_TIMEOUT":     "server.shutdown_timeout",
		"OPENAI_API_KEY":              "openai.api_key",
		"UPLOAD_SCAN_SECRETS":         "upload.scan_secrets",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
		"BRAINLIB_DEFAULT_STORE_NAME": "openai.default_store_name",
		"PATH":                        "",
		"HOME":                        "",
		"GOPATH_EXTRA":                "",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
