package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/routeforge/vrpcore/evolution"
	"github.com/routeforge/vrpcore/population"
)

// Metrics exposes the solver's generational progress as Prometheus
// gauges/counters, registered against a dedicated Registry so embedding
// applications can mount it under their own /metrics path without
// clashing with the default global registry.
type Metrics struct {
	Registry *prometheus.Registry

	generations   prometheus.Counter
	populationSz  prometheus.Gauge
	bestFitness   prometheus.Gauge
	generationDur prometheus.Histogram

	lastGenAt time.Time
}

// NewMetrics builds and registers every gauge/counter on a fresh
// Registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		generations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "vrpcore",
			Name:      "generations_total",
			Help:      "Total evolution generations completed.",
		}),
		populationSz: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "vrpcore",
			Name:      "population_size",
			Help:      "Current population size.",
		}),
		bestFitness: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "vrpcore",
			Name:      "best_fitness_primary",
			Help:      "Primary (first hierarchy group) fitness of the best-known solution.",
		}),
		generationDur: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "vrpcore",
			Name:      "generation_duration_seconds",
			Help:      "Wall-clock duration of each completed generation.",
		}),
	}
	return m
}

// MetricsHook adapts Metrics to evolution.GenerationHook.
type MetricsHook struct {
	Metrics *Metrics
}

func (h MetricsHook) OnGeneration(gen int, pop population.Population, term evolution.Termination, started time.Time) {
	m := h.Metrics
	now := time.Now()
	m.generations.Inc()
	m.populationSz.Set(float64(pop.Size()))
	if ranked := pop.Ranked(); len(ranked) > 0 && len(ranked[0].Fitness) > 0 {
		m.bestFitness.Set(ranked[0].Fitness[0])
	}
	if !m.lastGenAt.IsZero() {
		m.generationDur.Observe(now.Sub(m.lastGenAt).Seconds())
	}
	m.lastGenAt = now
}
