package etcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/webpush/log"
)

var (
	ErrEtcdNotInitialized = errors.New("etcd: client not initialized")
	ErrConnectionFailed   = errors.New("etcd: failed to connect")
)

// Etcd ETCD 客户端
type Etcd struct {
	client *clientv3.Client
	config *Config
	logger *log.Logger
}

// Option Etcd 配置选项函数类型
type Option func(*Etcd)

// WithLogger 设置日志记录器，默认 log.G
func WithLogger(logger *log.Logger) Option {
	return func(e *Etcd) {
		e.logger = logger
	}
}

// New 创建新的 Etcd 实例并检查连通性
func New(ctx context.Context, config *Config, opts ...Option) (*Etcd, error) {
	if err := config.init(); err != nil {
		return nil, err
	}

	e := &Etcd{config: config, logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            config.Endpoints,
		Username:             config.Username,
		Password:             config.Password,
		DialTimeout:          config.DialTimeout,
		DialKeepAliveTime:    config.KeepAliveTime,
		DialKeepAliveTimeout: config.KeepAliveTimeout,
		MaxCallSendMsgSize:   config.MaxSendMsgSize,
		MaxCallRecvMsgSize:   config.MaxRecvMsgSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	e.client = client

	if err := e.Ping(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}

	e.logger.Debug().Strs("endpoints", config.Endpoints).Msg("etcd client created")
	return e, nil
}

// Ping 通过 Status 测试第一个节点是否可用
func (e *Etcd) Ping(ctx context.Context) error {
	if e.client == nil {
		return ErrEtcdNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := e.client.Status(ctx, e.config.Endpoints[0])
	return err
}

// Client 获取原始的 etcd 客户端
func (e *Etcd) Client() *clientv3.Client {
	return e.client
}

// Close 关闭 etcd 连接
func (e *Etcd) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

func (e *Etcd) key(parts ...string) string {
	k := e.config.Prefix
	for _, p := range parts {
		k += "/" + p
	}
	return k
}
