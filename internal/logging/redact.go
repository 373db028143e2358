package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redactedPattern = "[REDACTED]"

// redactor masks sensitive keys and value patterns in log records.
type redactor struct {
	keys     map[string]bool
	patterns []*regexp.Regexp
}

// newRedactor returns nil when redaction is disabled.
func newRedactor(cfg RedactionConfig) (*redactor, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	r := &redactor{keys: make(map[string]bool, len(cfg.Keys))}
	for _, k := range cfg.Keys {
		r.keys[strings.ToLower(k)] = true
	}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

func (r *redactor) text(s string) string {
	for _, re := range r.patterns {
		s = re.ReplaceAllString(s, redactedPattern)
	}
	return s
}

func (r *redactor) field(f zapcore.Field) zapcore.Field {
	if r.keys[strings.ToLower(f.Key)] {
		if f.Type == zapcore.StringType {
			return zap.String(f.Key, fmt.Sprintf("[REDACTED:%d]", len(f.String)))
		}
		return zap.String(f.Key, redactedPattern)
	}

	switch f.Type {
	case zapcore.StringType:
		f.String = r.text(f.String)
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			return zap.String(f.Key, r.text(err.Error()))
		}
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok {
			return zap.String(f.Key, r.text(s.String()))
		}
	case zapcore.ByteStringType:
		if b, ok := f.Interface.([]byte); ok {
			return zap.ByteString(f.Key, []byte(r.text(string(b))))
		}
	}
	return f
}

func (r *redactor) fields(fs []zapcore.Field) []zapcore.Field {
	if len(fs) == 0 {
		return fs
	}
	out := make([]zapcore.Field, len(fs))
	for i, f := range fs {
		out[i] = r.field(f)
	}
	return out
}

// wrap applies redaction to everything written through core.
func (r *redactor) wrap(core zapcore.Core) zapcore.Core {
	if r == nil {
		return core
	}
	return &redactingCore{Core: core, r: r}
}

type redactingCore struct {
	zapcore.Core
	r *redactor
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.r.fields(fields)), r: c.r}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = c.r.text(ent.Message)
	return c.Core.Write(ent, c.r.fields(fields))
}
