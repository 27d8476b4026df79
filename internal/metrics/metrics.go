// Package metrics exposes the collector's Prometheus instruments on a
// private registry so tests never trip duplicate-registration panics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Set holds every instrument the pipeline records.
type Set struct {
	registry *prometheus.Registry

	TaskResults   *prometheus.CounterVec
	FetchRetries  *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	Completeness  prometheus.Gauge
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

// New builds a Set backed by a fresh registry.
func New() *Set {
	reg := prometheus.NewRegistry()
	s := &Set{
		registry: reg,
		TaskResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketsnap",
			Name:      "task_results_total",
			Help:      "Task outcomes per collection cycle, by task and result kind.",
		}, []string{"task", "outcome"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketsnap",
			Name:      "fetch_retries_total",
			Help:      "HTTP retries performed, by provider.",
		}, []string{"provider"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marketsnap",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one full collection cycle.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		Completeness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marketsnap",
			Name:      "completeness_percent",
			Help:      "Overall completeness score of the latest snapshot.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketsnap",
			Name:      "cache_hits_total",
			Help:      "Shared-cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketsnap",
			Name:      "cache_misses_total",
			Help:      "Shared-cache misses.",
		}),
	}
	reg.MustRegister(
		s.TaskResults, s.FetchRetries, s.CycleDuration, s.Completeness,
		s.CacheHits, s.CacheMisses,
		collectors.NewGoCollector(),
	)
	return s
}

// Registry returns the backing registry for the /metrics handler.
func (s *Set) Registry() *prometheus.Registry { return s.registry }
