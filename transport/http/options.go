package http

import (
	"context"

	"github.com/kochabx/webpush/core/tag"
	"github.com/kochabx/webpush/transport/http/metrics"
)

type Options struct {
	Metrics MetricsOption
	Health  HealthOption
}

type MetricsOption struct {
	Enabled                   bool   `json:"enabled"`
	Path                      string `json:"path" default:"/metrics"`
	EnabledGoCollector        bool   `json:"enabled_go_collector"`
	EnabledBuildInfoCollector bool   `json:"enabled_build_info_collector"`
	// Registry defaults to metrics.Prom
	Registry *metrics.Prometheus `json:"-" default:"-"`
}

func (m *MetricsOption) init() error {
	if m.Registry == nil {
		m.Registry = metrics.Prom
	}
	return tag.ApplyDefaults(m)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type HealthOption struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path" default:"/health"`
	// Checks run on every probe, keyed by dependency name
	Checks map[string]HealthCheck `json:"-" default:"-"`
}

func (h *HealthOption) init() error {
	return tag.ApplyDefaults(h)
}
