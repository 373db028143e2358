package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap/zapcore"
)

// SampledOut counts records dropped by sampling.
var SampledOut = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brainlib",
		Subsystem: "log",
		Name:      "sampled_out_total",
		Help:      "Log records dropped by sampling",
	},
	[]string{"level"},
)

// newSampledCore samples records below warn level. Warnings and errors,
// such as orphaned uploads and provider failures, are always written.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	below := levelGate{Core: core, allow: func(l zapcore.Level) bool { return l < zapcore.WarnLevel }}
	above := levelGate{Core: core, allow: func(l zapcore.Level) bool { return l >= zapcore.WarnLevel }}

	sampled := zapcore.NewSamplerWithOptions(below, cfg.Tick, cfg.Initial, cfg.Thereafter,
		zapcore.SamplerHook(func(ent zapcore.Entry, dec zapcore.SamplingDecision) {
			if dec&zapcore.LogDropped != 0 {
				SampledOut.WithLabelValues(ent.Level.String()).Inc()
			}
		}),
	)
	return zapcore.NewTee(above, sampled)
}

// levelGate passes only the levels allow accepts.
type levelGate struct {
	zapcore.Core
	allow func(zapcore.Level) bool
}

func (g levelGate) Enabled(l zapcore.Level) bool {
	return g.allow(l) && g.Core.Enabled(l)
}

func (g levelGate) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !g.allow(ent.Level) {
		return ce
	}
	return g.Core.Check(ent, ce)
}

func (g levelGate) With(fields []zapcore.Field) zapcore.Core {
	return levelGate{Core: g.Core.With(fields), allow: g.allow}
}
