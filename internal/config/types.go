package config

import "encoding/json"

// Secret is the provider credential. Every printed or serialized form masks
// it; only Value returns the raw text, for the Authorization header.
type Secret string

const masked = "[REDACTED]"

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return masked
}

// GoString masks %#v.
func (s Secret) GoString() string {
	return "config.Secret(" + masked + ")"
}

// Value returns the raw credential.
func (s Secret) Value() string { return string(s) }

// IsSet reports whether a credential was configured.
func (s Secret) IsSet() bool { return s != "" }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s Secret) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts the raw credential from koanf.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}
