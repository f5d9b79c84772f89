package dimple

import "go.uber.org/zap"

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for scope and construction events.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger == nil {
			return
		}
		r.logger = logger
	}
}

// WithMetrics records resolution counters into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}
