package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/push/pushtest"
)

func cleanup(t *testing.T, client *Client, keys ...string) {
	t.Cleanup(func() {
		client.UniversalClient().Del(context.Background(), keys...)
	})
}

func TestSubscriptionStore(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	store := NewSubscriptionStore(client)
	cleanup(t, client, store.ownerKey("alice"), store.ownerKey("bob"), store.indexKey())

	ua := pushtest.NewSubscriber(t)
	first := ua.Subscription(t, "https://push.example.net/b")
	second := ua.Subscription(t, "https://push.example.net/a")

	require.NoError(t, store.Save(ctx, "alice", first))
	require.NoError(t, store.Save(ctx, "alice", second))

	subs, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "https://push.example.net/a", subs[0].Endpoint())
	assert.True(t, subs[1].PublicKey().Equal(first.PublicKey()))
	assert.Equal(t, first.Auth(), subs[1].Auth())

	// endpoint 转移到 bob
	require.NoError(t, store.Save(ctx, "bob", first))
	subs, err = store.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	require.NoError(t, store.Delete(ctx, first.Endpoint()))
	require.NoError(t, store.Delete(ctx, first.Endpoint()))
	subs, err = store.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, subs)

	assert.ErrorIs(t, store.Save(ctx, "", first), push.ErrInvalidArgument)
}

func TestKeyStore(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	store := NewKeyStore(client)
	cleanup(t, client, client.key("vapid", "default"))

	_, err := store.Load(ctx, "default")
	require.ErrorIs(t, err, vapid.ErrKeysNotFound)

	// 并发首次使用只保留一个密钥对
	var wg sync.WaitGroup
	ids := make([]*vapid.Identity, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := vapid.Provision(ctx, store, "default")
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()
	for _, id := range ids[1:] {
		assert.True(t, ids[0].Keys().Equal(id.Keys()))
	}

	kp, err := vapid.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, "default", kp))
	loaded, err := store.Load(ctx, "default")
	require.NoError(t, err)
	assert.True(t, kp.Equal(loaded))
}
