package secrets

import (
	"sort"
	"strings"
)

// Result lists the credentials found in a document.
type Result struct {
	// Scanned is false when the content was not inspected, for example
	// because it is not text.
	Scanned  bool           `json:"scanned"`
	Findings []Finding      `json:"findings,omitempty"`
	ByRule   map[string]int `json:"by_rule,omitempty"`
}

// Finding represents a detected secret. The matched value is never kept.
type Finding struct {
	RuleID      string `json:"rule_id"` // gitleaks rule id, e.g. "slack-bot-token"
	Description string `json:"description"`
	Line        int    `json:"line"` // as reported by gitleaks
}

// HasFindings returns true if any secrets were found.
func (r *Result) HasFindings() bool {
	return r != nil && len(r.Findings) > 0
}

// RuleIDs returns the sorted, unique IDs of the rules that matched.
func (r *Result) RuleIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.ByRule))
	for id := range r.ByRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary is a one-line description suitable for a client error message.
func (r *Result) Summary() string {
	if !r.HasFindings() {
		return "no secrets detected"
	}
	return "document appears to contain secrets (" + strings.Join(r.RuleIDs(), ", ") + ")"
}
