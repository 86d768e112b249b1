package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/webpush/core/tag"
)

// Config Kafka 客户端配置
type Config struct {
	// Brokers Kafka Broker 地址列表
	Brokers []string `json:"brokers" mapstructure:"brokers" default:"localhost:9092" validate:"required,min=1"`

	// Username SASL 用户名
	Username string `json:"username" mapstructure:"username"`

	// Password SASL 密码
	Password string `json:"password" mapstructure:"password"`

	// Topic 推送报告主题
	Topic string `json:"topic" mapstructure:"topic" default:"webpush.reports" validate:"required"`

	// GroupID 报告消费者组
	GroupID string `json:"groupId" mapstructure:"group_id" default:"webpush"`

	// Balancer 负载均衡策略, 默认按 key 哈希, 同一端点的报告落在同一分区
	Balancer Balancer `json:"balancer" mapstructure:"balancer" default:"1"`

	// AllowAutoTopicCreation 是否允许自动创建 Topic
	AllowAutoTopicCreation bool `json:"allowAutoTopicCreation" mapstructure:"allow_auto_topic_creation" default:"true"`

	// Timeout 连接超时时间
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" default:"3s"`

	// WriteTimeout 单次写入超时
	WriteTimeout time.Duration `json:"writeTimeout" mapstructure:"write_timeout" default:"10s"`

	// CloseTimeout 关闭超时时间
	CloseTimeout time.Duration `json:"closeTimeout" mapstructure:"close_timeout" default:"5s"`

	// MinBytes 最小批处理字节数
	MinBytes int `json:"minBytes" mapstructure:"min_bytes" default:"1"`

	// MaxBytes 最大批处理字节数
	MaxBytes int `json:"maxBytes" mapstructure:"max_bytes" default:"1048576"`
}

// Balancer 负载均衡策略枚举
type Balancer int

const (
	BalancerLeastBytes Balancer = iota
	BalancerHash
)

// ApplyDefaults 应用默认值
func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// balancer 获取 kafka-go 的 Balancer 实现
func (c *Config) balancer() kafka.Balancer {
	switch c.Balancer {
	case BalancerHash:
		return &kafka.Hash{}
	default:
		return &kafka.LeastBytes{}
	}
}
