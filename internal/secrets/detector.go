package secrets

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Detector finds credentials in text. It is safe for concurrent use.
type Detector struct {
	mu           sync.Mutex
	scanner      *detect.Detector
	maxScanBytes int
}

// New creates a Detector over the gitleaks default rules. If cfg is nil,
// DefaultConfig() is used.
func New(cfg *Config) (*Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	allow, err := cfg.allowlist()
	if err != nil {
		return nil, err
	}

	scanner, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load gitleaks rules: %w", err)
	}
	if allow != nil {
		scanner.Config.Allowlists = append(scanner.Config.Allowlists, allow)
	}

	maxScan := cfg.MaxScanBytes
	if maxScan <= 0 {
		maxScan = DefaultMaxScanBytes
	}
	return &Detector{scanner: scanner, maxScanBytes: maxScan}, nil
}

// Check scans text content.
func (d *Detector) Check(content string) *Result {
	if len(content) > d.maxScanBytes {
		content = content[:d.maxScanBytes]
	}

	d.mu.Lock()
	found := d.scanner.DetectString(content)
	d.mu.Unlock()

	result := &Result{
		Scanned:  true,
		Findings: make([]Finding, 0, len(found)),
		ByRule:   make(map[string]int),
	}
	for _, f := range found {
		result.Findings = append(result.Findings, Finding{
			RuleID:      f.RuleID,
			Description: f.Description,
			Line:        f.StartLine,
		})
		result.ByRule[f.RuleID]++
	}
	return result
}

// CheckBytes scans a document payload. Content that is not valid UTF-8 is
// treated as binary and reported with Scanned=false.
func (d *Detector) CheckBytes(content []byte) *Result {
	if len(content) > d.maxScanBytes {
		content = trimPartialRune(content[:d.maxScanBytes])
	}
	if !utf8.Valid(content) {
		return &Result{Scanned: false}
	}
	return d.Check(string(content))
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end of a
// truncated buffer.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && i < len(b); i++ {
		start := len(b) - 1 - i
		if utf8.RuneStart(b[start]) {
			if !utf8.FullRune(b[start:]) {
				return b[:start]
			}
			break
		}
	}
	return b
}
