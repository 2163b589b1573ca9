// Package metrics provides Prometheus metrics for the fplcoach service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithConstLabels adds constant labels to all metrics.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.constLabels = labels
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
