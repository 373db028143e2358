package logging

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records everything logged through it, unredacted, for
// assertions in tests.
type TestLogger struct {
	*Logger
	logs *observer.ObservedLogs
}

// NewTestLogger returns a logger that observes every level down to trace.
func NewTestLogger() *TestLogger {
	core, logs := observer.New(TraceLevel)
	return &TestLogger{Logger: &Logger{zap: zap.New(core)}, logs: logs}
}

// Entries returns the records logged so far.
func (t *TestLogger) Entries() []observer.LoggedEntry {
	return t.logs.All()
}

// AssertLogged fails tb unless a record at level contains msg.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, msg string) {
	tb.Helper()
	for _, e := range t.logs.All() {
		if e.Level == level && strings.Contains(e.Message, msg) {
			return
		}
	}
	tb.Errorf("no %s record containing %q; have %s", level, msg, t.summary())
}

// AssertField fails tb unless a record with message msg has field key whose
// rendered value is want. Errors render as their message.
func (t *TestLogger) AssertField(tb testing.TB, msg, key, want string) {
	tb.Helper()
	for _, e := range t.logs.FilterMessage(msg).All() {
		for _, f := range e.Context {
			if f.Key == key && renderField(f) == want {
				return
			}
		}
	}
	tb.Errorf("no record %q with %s=%q; have %s", msg, key, want, t.summary())
}

// AssertNoSecrets fails tb if any record would have been changed by the
// default redaction policy.
func (t *TestLogger) AssertNoSecrets(tb testing.TB) {
	tb.Helper()
	r, err := newRedactor(NewDefaultConfig().Redaction)
	if err != nil {
		tb.Fatalf("default redaction policy: %v", err)
	}
	for _, e := range t.logs.All() {
		if r.text(e.Message) != e.Message {
			tb.Errorf("secret in message %q", e.Message)
		}
		for _, f := range e.Context {
			if v := renderField(f); r.text(v) != v {
				tb.Errorf("secret in field %q of %q", f.Key, e.Message)
			}
		}
	}
}

func (t *TestLogger) summary() string {
	var b strings.Builder
	for _, e := range t.logs.All() {
		fmt.Fprintf(&b, "[%s %q]", e.Level, e.Message)
	}
	return b.String()
}

func renderField(f zapcore.Field) string {
	switch f.Type {
	case zapcore.StringType:
		return f.String
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			return err.Error()
		}
	}
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	return fmt.Sprint(enc.Fields[f.Key])
}
