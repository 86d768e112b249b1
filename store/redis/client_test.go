package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/log"
)

// newTestClient 连接本地 Redis，不可用时跳过
func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := Single("localhost:6379")
	cfg.KeyPrefix = "webpush-test-" + t.Name()
	client, err := New(ctx, cfg, WithDebug(100*time.Millisecond))
	if err != nil {
		t.Skipf("Skipping test (Redis not available): %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, []string{"localhost:6379"}, cfg.Addrs)
	assert.Equal(t, 3, cfg.Protocol)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 5*time.Minute, cfg.MaxIdleTime)
	assert.Equal(t, "webpush", cfg.KeyPrefix)
	assert.Nil(t, cfg.TLSConfig)
}

func TestConfigMode(t *testing.T) {
	assert.Equal(t, "single", Single("localhost:6379").mode())
	assert.Equal(t, "cluster", Cluster("a:7000", "b:7001").mode())
	assert.Equal(t, "sentinel", Sentinel("mymaster", "a:26379").mode())

	assert.ErrorIs(t, (&Config{}).Validate(), ErrEmptyAddrs)
	assert.ErrorIs(t, (&Config{Addrs: []string{"a"}, ReadTimeout: -1}).Validate(), ErrInvalidTimeout)
}

func TestUniversalOptions(t *testing.T) {
	cfg := Single("localhost:6379")
	require.NoError(t, cfg.ApplyDefaults())
	o := applyOptions(cfg, []Option{WithPassword("secret"), WithDB(2), WithLogger(log.G)})

	opts := universalOptions(cfg)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Positive(t, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
	assert.Same(t, log.G, o.logger)
}

func TestKey(t *testing.T) {
	c := &Client{config: &Config{KeyPrefix: "webpush"}}
	assert.Equal(t, "{webpush}:vapid:default", c.key("vapid", "default"))
	assert.Equal(t, "{webpush}:subscription-owners", c.key("subscription-owners"))
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	client := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
	assert.NotNil(t, client.Stats())
}
