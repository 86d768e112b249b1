package kafka

import (
	"github.com/segmentio/kafka-go"

	"github.com/kochabx/webpush/log"
)

// Option 客户端配置选项
type Option func(*clientOptions)

type clientOptions struct {
	dialer *kafka.Dialer
	logger *log.Logger
}

// WithDialer 设置自定义 Dialer
func WithDialer(dialer *kafka.Dialer) Option {
	return func(o *clientOptions) {
		o.dialer = dialer
	}
}

// WithLogger 设置日志, 默认 log.G
func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) *clientOptions {
	o := &clientOptions{logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
