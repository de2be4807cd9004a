// Package telemetry reports solver progress: structured logs for every
// generation, an optional live websocket dashboard, and optional
// Prometheus metrics, gated by Mode so a batch run pays for none of it.
package telemetry

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/routeforge/vrpcore/evolution"
	"github.com/routeforge/vrpcore/population"
)

// Mode selects how much telemetry a solve run produces.
type Mode int

const (
	// ModeNone disables all telemetry.
	ModeNone Mode = iota
	// ModeBasic logs one structured line per generation.
	ModeBasic
	// ModeOnlyProgress runs the websocket dashboard but skips Prometheus.
	ModeOnlyProgress
	// ModeFull runs logging, dashboard, and Prometheus metrics.
	ModeFull
)

// Logger wraps a *logrus.Logger configured the way this solver's
// structured logs are shaped: one entry per generation, fields for
// generation index, population size, and best-known fitness.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger returns a Logger writing structured (JSON) entries, the
// format this solver standardizes on so logs can be shipped to any
// log-aggregation backend without a text-format parser.
func NewLogger() *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{entry: logrus.NewEntry(base)}
}

// WithField returns a derived Logger carrying an extra structured field
// (e.g. "run_id") on every subsequent entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// GenerationHook adapts Logger to evolution.GenerationHook, logging one
// structured line per completed generation.
type GenerationHook struct {
	Logger *Logger
}

func (h GenerationHook) OnGeneration(gen int, pop population.Population, term evolution.Termination, started time.Time) {
	ranked := pop.Ranked()
	fields := logrus.Fields{
		"generation":      gen,
		"population_size": pop.Size(),
		"elapsed_seconds": time.Since(started).Seconds(),
		"progress":        term.Estimate(gen, started, pop),
	}
	if len(ranked) > 0 {
		fields["best_fitness"] = ranked[0].Fitness
	}
	h.Logger.entry.WithFields(fields).Info("generation complete")
}
