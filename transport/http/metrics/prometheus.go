package metrics

import (
	"regexp"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prom is the registry served on the metrics route.
var Prom = New()

type Prometheus struct {
	registry  *prometheus.Registry
	goOnce    sync.Once
	buildOnce sync.Once
}

func New() *Prometheus {
	return &Prometheus{
		registry: prometheus.NewRegistry(),
	}
}

// WithGoCollectorRuntimeMetrics registers the Go runtime collector once.
func (p *Prometheus) WithGoCollectorRuntimeMetrics() {
	p.goOnce.Do(func() {
		p.registry.MustRegister(collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
		))
	})
}

// WithBuildInfoCollector registers the build info collector once.
func (p *Prometheus) WithBuildInfoCollector() {
	p.buildOnce.Do(func() {
		p.registry.MustRegister(collectors.NewBuildInfoCollector())
	})
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
