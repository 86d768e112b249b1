package redis

import (
	"context"
	"runtime"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/log"
)

// Client Redis 统一客户端（支持单机/集群/哨兵模式）
type Client struct {
	client redis.UniversalClient
	config *Config
	logger *log.Logger
}

// New 创建新的 Redis 客户端，根据配置自动选择模式并立即 Ping
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	o := applyOptions(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		logger: o.logger,
		client: redis.NewUniversalClient(universalOptions(cfg)),
	}

	if err := c.setupHooks(o); err != nil {
		c.client.Close()
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		c.client.Close()
		return nil, err
	}

	c.logger.Debug().Str("mode", cfg.mode()).Strs("addrs", cfg.Addrs).Msg("redis client created")
	return c, nil
}

func universalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}

	return &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Protocol:   cfg.Protocol,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:        poolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.MaxIdleTime,
		PoolTimeout:     cfg.PoolTimeout,
		MaxRetries:      cfg.MaxRetries,

		TLSConfig: cfg.TLSConfig,
	}
}

func (c *Client) setupHooks(o *clientOptions) error {
	for _, hook := range o.hooks {
		c.client.AddHook(hook)
	}
	if o.enableTracing {
		if err := redisotel.InstrumentTracing(c.client, o.tracingOpts...); err != nil {
			return err
		}
	}
	if o.enableMetrics {
		if err := redisotel.InstrumentMetrics(c.client, o.metricsOpts...); err != nil {
			return err
		}
	}
	if o.enableDebug {
		c.client.AddHook(NewDebugHook(c.logger, o.slowQueryThresh))
	}
	return nil
}

// UniversalClient 获取底层 redis.UniversalClient
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.client
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭客户端
func (c *Client) Close() error {
	err := c.client.Close()
	c.logger.Debug().Msg("redis client closed")
	return err
}

// Stats 获取连接池统计信息
func (c *Client) Stats() *redis.PoolStats {
	return c.client.PoolStats()
}

// key 拼接带哈希标签的键名
func (c *Client) key(parts ...string) string {
	k := "{" + c.config.KeyPrefix + "}"
	for _, p := range parts {
		k += ":" + p
	}
	return k
}
