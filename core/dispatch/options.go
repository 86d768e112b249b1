package dispatch

import (
	"time"

	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/log"
)

const (
	defaultConcurrency   = 16
	defaultBatchSize     = 100
	defaultMaxRetryAfter = 10 * time.Minute
)

// Options 调度器配置
type Options struct {
	// Concurrency 协程池大小
	Concurrency int
	// BatchSize 每批并发发送的通知数, 一批的报告交给 sink 之后再开始下一批
	BatchSize int
	// Retry 重试策略
	Retry RetryStrategy
	// MaxRetryAfter Retry-After 超过该值时放弃重试
	MaxRetryAfter time.Duration
	// BreakerThreshold 连续失败多少次后熔断, 0 关闭熔断
	BreakerThreshold int
	// BreakerCooldown 熔断持续时间
	BreakerCooldown time.Duration

	Sinks   []push.ReportSink
	Metrics *Metrics
	Logger  *log.Logger
}

// Option 配置选项
type Option func(*Options)

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Concurrency:      defaultConcurrency,
		BatchSize:        defaultBatchSize,
		Retry:            NewExponentialBackoff(time.Second, time.Minute, 3),
		MaxRetryAfter:    defaultMaxRetryAfter,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
		Logger:           log.G,
	}
}

// WithConcurrency 设置协程池大小
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithBatchSize 设置批大小
func WithBatchSize(n int) Option {
	return func(o *Options) {
		o.BatchSize = n
	}
}

// WithRetry 设置重试策略
func WithRetry(r RetryStrategy) Option {
	return func(o *Options) {
		o.Retry = r
	}
}

// WithMaxRetryAfter 设置可接受的最长 Retry-After
func WithMaxRetryAfter(d time.Duration) Option {
	return func(o *Options) {
		o.MaxRetryAfter = d
	}
}

// WithCircuitBreaker 设置熔断阈值与冷却时间, threshold 为 0 时关闭
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(o *Options) {
		o.BreakerThreshold = threshold
		o.BreakerCooldown = cooldown
	}
}

// WithSinks 添加报告消费者
func WithSinks(sinks ...push.ReportSink) Option {
	return func(o *Options) {
		o.Sinks = append(o.Sinks, sinks...)
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithLogger 设置日志
func WithLogger(logger *log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
