package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/webpush/log"
)

// Client Kafka 客户端封装, 按主题缓存生产者和消费者组
type Client struct {
	config    *Config
	dialer    *kafka.Dialer
	transport *kafka.Transport
	logger    *log.Logger

	producers map[string]*kafka.Writer
	consumers map[string]*kafka.Reader
	closed    bool
	mu        sync.RWMutex
}

// New 创建新的 Kafka 客户端实例, 不会主动连接 Broker
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if len(cfg.Brokers) == 0 {
		return nil, ErrEmptyBrokers
	}

	o := applyOptions(opts)
	c := &Client{
		config:    cfg,
		logger:    o.logger,
		producers: make(map[string]*kafka.Writer),
		consumers: make(map[string]*kafka.Reader),
	}

	c.dialer = o.dialer
	if c.dialer == nil {
		c.dialer = c.createDialer()
	}
	c.transport = c.createTransport()

	return c, nil
}

// Config 返回生效的配置
func (c *Client) Config() *Config {
	return c.config
}

func (c *Client) sasl() bool {
	return c.config.Username != "" && c.config.Password != ""
}

func (c *Client) mechanism() plain.Mechanism {
	return plain.Mechanism{
		Username: c.config.Username,
		Password: c.config.Password,
	}
}

func (c *Client) createDialer() *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   c.config.Timeout,
		DualStack: true,
	}
	if c.sasl() {
		dialer.SASLMechanism = c.mechanism()
	}
	return dialer
}

func (c *Client) createTransport() *kafka.Transport {
	transport := &kafka.Transport{DialTimeout: c.config.Timeout}
	if c.sasl() {
		transport.SASL = c.mechanism()
	}
	return transport
}

// Ping 连接第一个可用的 Broker
func (c *Client) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range c.config.Brokers {
		conn, err := c.dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return lastErr
}

// Producer 获取指定主题的同步生产者, 如果不存在则创建
func (c *Client) Producer(topic string) (*kafka.Writer, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClientClosed
	}
	if w, ok := c.producers[topic]; ok {
		c.mu.RUnlock()
		return w, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if w, ok := c.producers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               c.config.balancer(),
		Transport:              c.transport,
		AllowAutoTopicCreation: c.config.AllowAutoTopicCreation,
		WriteTimeout:           c.config.WriteTimeout,
		RequiredAcks:           kafka.RequireAll,
	}
	c.producers[topic] = w
	return w, nil
}

// ConsumerGroup 获取指定主题和消费者组的消费者, 如果不存在则创建
func (c *Client) ConsumerGroup(topic, groupID string) (*kafka.Reader, error) {
	key := topic + "-" + groupID

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if r, ok := c.consumers[key]; ok {
		return r, nil
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.config.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: c.config.MinBytes,
		MaxBytes: c.config.MaxBytes,
		Dialer:   c.dialer,
	})
	c.consumers[key] = r
	return r, nil
}

// Close 关闭所有的生产者和消费者连接, 重复调用无副作用
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()

	eg, _ := errgroup.WithContext(ctx)
	for _, w := range c.producers {
		eg.Go(w.Close)
	}
	for _, r := range c.consumers {
		eg.Go(r.Close)
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		c.logger.Warn().Dur("timeout", c.config.CloseTimeout).Msg("kafka close timed out")
		return ctx.Err()
	}
}
