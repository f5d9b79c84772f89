package dimple

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus counters a Registry reports into.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Constructed     *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec
	ScopeClears     *prometheus.CounterVec
	ScopeViolations prometheus.Counter
}

// NewMetrics creates the counters under namespace and registers them in a
// dedicated prometheus registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	constructed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_constructed_total",
			Help:      "Total number of service instances built by factories",
		},
		[]string{"scope"},
	)

	cacheHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of lookups served from a scope cache",
		},
		[]string{"scope"},
	)

	scopeClears := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_clears_total",
			Help:      "Total number of scope caches cleared on leave",
		},
		[]string{"scope"},
	)

	violations := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_violations_total",
			Help:      "Total number of lookups for services unreachable from the current scope",
		},
	)

	registry.MustRegister(constructed, cacheHits, scopeClears, violations)

	return &Metrics{
		registry:        registry,
		Constructed:     constructed,
		CacheHits:       cacheHits,
		ScopeClears:     scopeClears,
		ScopeViolations: violations,
	}
}

// Registry returns the prometheus registry the counters live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) constructed(scope string) {
	if m == nil {
		return
	}
	m.Constructed.WithLabelValues(scope).Inc()
}

func (m *Metrics) cacheHit(scope string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(scope).Inc()
}

func (m *Metrics) cleared(scope string) {
	if m == nil {
		return
	}
	m.ScopeClears.WithLabelValues(scope).Inc()
}

func (m *Metrics) violation() {
	if m == nil {
		return
	}
	m.ScopeViolations.Inc()
}
