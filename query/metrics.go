// ABOUTME: Prometheus counters for fetch cache hits, misses, and fetch failures, labelled by key root.
package query

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the cache counters. A nil *Metrics records nothing.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewMetrics creates the cache counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutria",
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Fetches served from the cache.",
		}, []string{"resource"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutria",
			Subsystem: "query",
			Name:      "cache_misses_total",
			Help:      "Fetches that called through to the loader.",
		}, []string{"resource"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutria",
			Subsystem: "query",
			Name:      "fetch_errors_total",
			Help:      "Loader calls that returned an error.",
		}, []string{"resource"}),
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// resource labels by the first key segment so ids don't blow up cardinality.
func resource(key string) string {
	root, _, _ := strings.Cut(key, "/")
	return root
}

func (m *Metrics) hit(key string) {
	if m != nil {
		m.hits.WithLabelValues(resource(key)).Inc()
	}
}

func (m *Metrics) miss(key string) {
	if m != nil {
		m.misses.WithLabelValues(resource(key)).Inc()
	}
}

func (m *Metrics) fail(key string) {
	if m != nil {
		m.errors.WithLabelValues(resource(key)).Inc()
	}
}
