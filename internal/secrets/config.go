package secrets

import (
	"fmt"
	"regexp"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"

	"github.com/fyrsmithlabs/brainlib/internal/config"
)

// DefaultMaxScanBytes bounds how much of a document is scanned.
const DefaultMaxScanBytes = 32 << 20

// Config configures a Detector.
type Config struct {
	// AllowList holds content patterns whose matches are never reported,
	// such as documented placeholder keys.
	AllowList []string `koanf:"allow_list"`
	// MaxScanBytes limits the scanned prefix of a document. Zero means
	// DefaultMaxScanBytes.
	MaxScanBytes int `koanf:"max_scan_bytes"`
}

// DefaultConfig allows the placeholders that show up in setup guides.
func DefaultConfig() *Config {
	return &Config{
		AllowList: []string{
			`(?i)example`,
			`(?i)x{16,}`,
			`(?i)your[_-]?(api[_-]?)?key`,
		},
		MaxScanBytes: DefaultMaxScanBytes,
	}
}

// FromAppConfig extends the default allow list with the configured one.
func FromAppConfig(upload config.UploadConfig) *Config {
	cfg := DefaultConfig()
	cfg.AllowList = append(cfg.AllowList, upload.SecretsAllowList...)
	return cfg
}

// allowlist converts the allow list into a gitleaks global allowlist.
// It returns nil when there is nothing to allow.
func (c *Config) allowlist() (*gitleaksConfig.Allowlist, error) {
	if len(c.AllowList) == 0 {
		return nil, nil
	}

	allow := &gitleaksConfig.Allowlist{
		Description: "brainlib upload allow list",
	}
	for i, pattern := range c.AllowList {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("allow_list %d: invalid pattern: %w", i, err)
		}
		allow.Regexes = append(allow.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	return allow, nil
}
