package etcd

import (
	"time"

	"github.com/kochabx/webpush/core/tag"
)

// Config ETCD 配置
type Config struct {
	Endpoints        []string      `json:"endpoints" mapstructure:"endpoints" default:"localhost:2379" validate:"required,min=1"`
	Username         string        `json:"username" mapstructure:"username"`
	Password         string        `json:"password" mapstructure:"password"`
	DialTimeout      time.Duration `json:"dialTimeout" mapstructure:"dial_timeout" default:"5s"`
	KeepAliveTime    time.Duration `json:"keepAliveTime" mapstructure:"keep_alive_time" default:"30s"`
	KeepAliveTimeout time.Duration `json:"keepAliveTimeout" mapstructure:"keep_alive_timeout" default:"5s"`
	MaxSendMsgSize   int           `json:"maxSendMsgSize" mapstructure:"max_send_msg_size" default:"2097152"` // 2MB
	MaxRecvMsgSize   int           `json:"maxRecvMsgSize" mapstructure:"max_recv_msg_size" default:"4194304"` // 4MB
	// Prefix 所有键的前缀
	Prefix string `json:"prefix" mapstructure:"prefix" default:"/webpush"`
	// LockTTL 轮换锁的租约时长（秒）
	LockTTL int64 `json:"lockTTL" mapstructure:"lock_ttl" default:"30"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}
