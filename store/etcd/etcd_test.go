package etcd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/webpush/core/crypto/vapid"
)

// newTestEtcd 连接本地 etcd，不可用时跳过
func newTestEtcd(t *testing.T) *Etcd {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	e, err := New(ctx, &Config{
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: 2 * time.Second,
		Prefix:      "/webpush-test/" + t.Name(),
	})
	if err != nil {
		t.Skipf("Skipping test (etcd not available): %v", err)
	}
	t.Cleanup(func() {
		e.client.Delete(context.Background(), e.config.Prefix, clientv3.WithPrefix())
		e.Close()
	})
	return e
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.init())
	assert.Equal(t, []string{"localhost:2379"}, cfg.Endpoints)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, "/webpush", cfg.Prefix)
	assert.Equal(t, int64(30), cfg.LockTTL)

	e := &Etcd{config: cfg}
	assert.Equal(t, "/webpush/vapid/default", e.key("vapid", "default"))
	assert.ErrorIs(t, e.Ping(context.Background()), ErrEtcdNotInitialized)
	assert.NoError(t, e.Close())
}

func TestKeyStoreCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewKeyStore(newTestEtcd(t))

	_, err := store.Load(ctx, "default")
	require.ErrorIs(t, err, vapid.ErrKeysNotFound)

	var wg sync.WaitGroup
	winners := make([]*vapid.KeyPair, 8)
	for i := range winners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kp, err := vapid.GenerateKeyPair()
			if !assert.NoError(t, err) {
				return
			}
			winners[i], err = store.Create(ctx, "default", kp)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := store.Load(ctx, "default")
	require.NoError(t, err)
	for _, kp := range winners {
		assert.True(t, stored.Equal(kp))
	}
}

func TestKeyStoreRotateAndWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newTestEtcd(t)
	store := NewKeyStore(e)

	writer, err := vapid.Provision(ctx, store, "default")
	require.NoError(t, err)
	reader, err := vapid.Provision(ctx, store, "default")
	require.NoError(t, err)
	require.True(t, writer.Keys().Equal(reader.Keys()))

	go store.Watch(ctx, reader)
	time.Sleep(100 * time.Millisecond)

	rotated, err := store.Rotate(ctx, writer)
	require.NoError(t, err)
	assert.True(t, writer.Keys().Equal(rotated))
	assert.Eventually(t, func() bool { return reader.Keys().Equal(rotated) }, 3*time.Second, 20*time.Millisecond)
}

func TestLock(t *testing.T) {
	ctx := context.Background()
	e := newTestEtcd(t)

	first := e.NewLock(e.key("lock"), 5)
	require.NoError(t, first.TryLock(ctx))
	assert.ErrorIs(t, e.NewLock(e.key("lock"), 5).TryLock(ctx), ErrLocked)

	require.NoError(t, first.Unlock(ctx))
	second := e.NewLock(e.key("lock"), 5)
	require.NoError(t, second.TryLock(ctx))
	require.NoError(t, second.Unlock(ctx))
	assert.NoError(t, second.Unlock(ctx))
}
