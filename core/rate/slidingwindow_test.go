package rate

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	l, err := NewLocalLimiter(time.Minute, 2)
	require.NoError(t, err)
	l.now = func() time.Time { return now }

	for _, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}

	// other keys have their own window
	ok, err := l.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, l.events, "bob")
}

func TestInvalidLimit(t *testing.T) {
	_, err := NewLocalLimiter(0, 1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	_, err = NewSlidingWindowLimiter(nil, "", time.Second, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	prefix := "{webpush-test}:ratelimit:"
	t.Cleanup(func() { client.Del(context.Background(), prefix+"alice") })

	l, err := NewSlidingWindowLimiter(client, prefix, time.Minute, 3)
	require.NoError(t, err)
	now := time.Now()
	l.now = func() time.Time { return now }

	for _, want := range []bool{true, true, true, false} {
		ok, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}

	now = now.Add(time.Minute + time.Millisecond)
	ok, err := l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}
