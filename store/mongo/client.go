package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kochabx/webpush/log"
)

var (
	ErrInvalidConfig    = errors.New("mongo: config is required")
	ErrConnectionFailed = errors.New("mongo: failed to connect")
)

// Client MongoDB 客户端包装器
type Client struct {
	client *mongo.Client
	config *Config
	logger *log.Logger
}

// New 创建新的 Mongo 客户端并检查连通性
func New(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Init(); err != nil {
		return nil, err
	}

	o := &clientOptions{logger: log.G}
	for _, opt := range opts {
		opt(o)
	}

	m := &Client{config: config, logger: o.logger}
	if err := m.connect(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := m.Ping(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}

	m.logger.Debug().Str("host", config.Host).Int("port", config.Port).Msg("mongo client created")
	return m, nil
}

func (m *Client) connect() error {
	opts := options.Client().
		ApplyURI(m.config.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{
			UseJSONStructTags: true,
			NilSliceAsEmpty:   true,
		}).
		SetMaxPoolSize(uint64(m.config.MaxPoolSize)).
		SetConnectTimeout(m.config.Timeout).
		SetServerSelectionTimeout(m.config.Timeout)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	m.client = client
	return nil
}

// Ping 测试 MongoDB 连接是否正常
func (m *Client) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close 关闭客户端
func (m *Client) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(context.Background())
}

// Database 获取配置的数据库
func (m *Client) Database() *mongo.Database {
	return m.client.Database(m.config.Database)
}

// Collection 获取配置的订阅集合
func (m *Client) Collection() *mongo.Collection {
	return m.Database().Collection(m.config.Collection)
}
