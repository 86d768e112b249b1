package redis

import (
	"crypto/tls"
	"time"

	"github.com/kochabx/webpush/core/tag"
)

// Config Redis 统一配置（支持单机/集群/哨兵模式）
type Config struct {
	// Addrs 单机一个地址，集群多个地址，哨兵模式为哨兵地址
	Addrs []string `json:"addrs" mapstructure:"addrs" default:"localhost:6379" validate:"required,min=1"`
	// MasterName 哨兵模式的主节点名称
	MasterName string `json:"masterName" mapstructure:"master_name"`
	Username   string `json:"username" mapstructure:"username"`
	Password   string `json:"password" mapstructure:"password"`
	// DB 集群模式忽略此字段
	DB       int `json:"db" mapstructure:"db"`
	Protocol int `json:"protocol" mapstructure:"protocol" default:"3" validate:"oneof=2 3"`

	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"write_timeout" default:"3s"`

	// PoolSize 0 表示 10 * GOMAXPROCS
	PoolSize     int           `json:"poolSize" mapstructure:"pool_size"`
	MinIdleConns int           `json:"minIdleConns" mapstructure:"min_idle_conns"`
	MaxIdleTime  time.Duration `json:"maxIdleTime" mapstructure:"max_idle_time" default:"5m"`
	PoolTimeout  time.Duration `json:"poolTimeout" mapstructure:"pool_timeout" default:"4s"`
	// MaxRetries -1 禁用重试
	MaxRetries int `json:"maxRetries" mapstructure:"max_retries"`

	// KeyPrefix 作为哈希标签包裹，保证集群模式下所有键落在同一槽位
	KeyPrefix string `json:"keyPrefix" mapstructure:"key_prefix" default:"webpush"`

	// Tracing 与 Metrics 通过 redisotel 接入全局 OpenTelemetry provider
	Tracing bool `json:"tracing" mapstructure:"tracing"`
	Metrics bool `json:"metrics" mapstructure:"metrics"`
	// SlowQuery 大于 0 时记录慢命令
	SlowQuery time.Duration `json:"slowQuery" mapstructure:"slow_query"`

	TLSConfig *tls.Config `json:"-" mapstructure:"-" default:"-"`
}

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single 创建单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 创建集群模式配置
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 创建哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// mode 返回客户端模式
func (c *Config) mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}
