package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/errors"
)

// Metrics Prometheus 指标收集器, nil 时所有记录方法为空操作
type Metrics struct {
	// Reports 按结果统计的报告数: success, expired, rejected, failed, circuit_open
	Reports *prometheus.CounterVec
	// Attempts 每条通知的发送尝试次数
	Attempts prometheus.Histogram
	// Duration 单次发送耗时
	Duration prometheus.Histogram
	// Retries 重试次数
	Retries prometheus.Counter
	// QueueLength 待发送通知数
	QueueLength prometheus.Gauge
	// CircuitState 熔断器状态（0=closed, 1=open, 2=half-open）
	CircuitState *prometheus.GaugeVec
}

// NewMetrics 创建指标收集器并注册到 reg, reg 为 nil 时使用默认注册表
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "reports_total",
				Help:      "Total number of delivery reports by result",
			},
			[]string{"result"},
		),
		Attempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "attempts",
				Help:      "Delivery attempts per notification",
				Buckets:   []float64{1, 2, 3, 4, 5, 8},
			},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "send_duration_seconds",
				Help:      "Duration of a single push request in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		Retries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "retries_total",
				Help:      "Total number of retried push requests",
			},
		),
		QueueLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "queue_length",
				Help:      "Number of queued notifications",
			},
		),
		CircuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "circuit_state",
				Help:      "Circuit breaker state per push service (0=closed, 1=open, 2=half-open)",
			},
			[]string{"origin"},
		),
	}
}

// result 报告在指标中的分类
func result(r *push.Report) string {
	switch {
	case r.Success:
		return "success"
	case r.Expired:
		return "expired"
	case errors.Is(r.Cause, ErrCircuitOpen):
		return "circuit_open"
	case r.StatusCode == 0:
		return "failed"
	default:
		return "rejected"
	}
}

func (m *Metrics) observeReport(r *push.Report, attempts int) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(result(r)).Inc()
	m.Attempts.Observe(float64(attempts))
}

func (m *Metrics) observeSend(d time.Duration) {
	if m == nil {
		return
	}
	m.Duration.Observe(d.Seconds())
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) setQueueLength(n int) {
	if m == nil {
		return
	}
	m.QueueLength.Set(float64(n))
}

func (m *Metrics) setCircuitState(origin string, s CircuitState) {
	if m == nil {
		return
	}
	m.CircuitState.WithLabelValues(origin).Set(float64(s))
}
