package recurrence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cacheMetrics is nil when metrics are disabled; every method tolerates that.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	rejected  prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	factory := promauto.With(reg)

	return &cacheMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "daterecur",
			Subsystem: "rule_cache",
			Name:      "hits_total",
			Help:      "Total number of lookups served from the compiled rule cache",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "daterecur",
			Subsystem: "rule_cache",
			Name:      "misses_total",
			Help:      "Total number of lookups that compiled a new rule",
		}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "daterecur",
			Subsystem: "rule_cache",
			Name:      "rejected_total",
			Help:      "Total number of configurations that failed validation",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "daterecur",
			Subsystem: "rule_cache",
			Name:      "evictions_total",
			Help:      "Total number of entries removed by expiry or size limits",
		}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "daterecur",
			Subsystem: "rule_cache",
			Name:      "entries",
			Help:      "Current number of cached rules",
		}),
	}
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) reject() {
	if m != nil {
		m.rejected.Inc()
	}
}

func (m *cacheMetrics) evicted(n int) {
	if m != nil && n > 0 {
		m.evictions.Add(float64(n))
	}
}

func (m *cacheMetrics) size(n int) {
	if m != nil {
		m.entries.Set(float64(n))
	}
}
