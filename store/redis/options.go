package redis

import (
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/log"
)

// Option 客户端配置选项
type Option func(*clientOptions)

type clientOptions struct {
	password string
	db       int

	hooks []redis.Hook

	enableMetrics bool
	enableTracing bool
	enableDebug   bool
	tracingOpts   []redisotel.TracingOption
	metricsOpts   []redisotel.MetricsOption

	logger          *log.Logger
	slowQueryThresh time.Duration
}

// WithPassword 覆盖配置中的密码
func WithPassword(password string) Option {
	return func(o *clientOptions) {
		o.password = password
	}
}

// WithDB 覆盖数据库索引（仅单机和哨兵模式有效）
func WithDB(db int) Option {
	return func(o *clientOptions) {
		o.db = db
	}
}

// WithHooks 添加自定义 Hooks
func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithMetrics 启用 OpenTelemetry Metrics
func WithMetrics(opts ...redisotel.MetricsOption) Option {
	return func(o *clientOptions) {
		o.enableMetrics = true
		o.metricsOpts = opts
	}
}

// WithTracing 启用 OpenTelemetry 分布式追踪
func WithTracing(opts ...redisotel.TracingOption) Option {
	return func(o *clientOptions) {
		o.enableTracing = true
		o.tracingOpts = opts
	}
}

// WithDebug 记录每条命令，超过阈值的记为慢查询，0 表示不检测
func WithDebug(slowQueryThreshold time.Duration) Option {
	return func(o *clientOptions) {
		o.enableDebug = true
		o.slowQueryThresh = slowQueryThreshold
	}
}

// WithLogger 设置日志记录器，默认 log.G
func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func applyOptions(cfg *Config, opts []Option) *clientOptions {
	o := &clientOptions{logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	// 配置文件中的开关与显式选项取并集
	if cfg.Tracing {
		o.enableTracing = true
	}
	if cfg.Metrics {
		o.enableMetrics = true
	}
	if cfg.SlowQuery > 0 && !o.enableDebug {
		o.enableDebug = true
		o.slowQueryThresh = cfg.SlowQuery
	}

	if o.password != "" {
		cfg.Password = o.password
	}
	if o.db > 0 {
		cfg.DB = o.db
	}
	return o
}
