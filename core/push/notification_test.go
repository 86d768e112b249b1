package push

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/errors"
)

func TestNewNotification(t *testing.T) {
	s := newSubscriber(t)
	sub := s.subscription(t, testEndpoint, "")

	n, err := NewNotification(sub, []byte("hello"), WithTTL(time.Hour), WithUrgency(UrgencyHigh), WithTopic("news"))
	require.NoError(t, err)
	assert.Same(t, sub, n.Subscription())
	assert.True(t, n.HasPayload())
	assert.Equal(t, []byte("hello"), n.Payload())

	got := n.Resolve(DefaultOptions())
	assert.Equal(t, Options{TTL: time.Hour, Urgency: UrgencyHigh, Topic: "news"}, got)
}

func TestNotificationResolveFallsBack(t *testing.T) {
	sub, err := NewSubscription(testEndpoint)
	require.NoError(t, err)

	n, err := NewNotification(sub, nil)
	require.NoError(t, err)
	assert.False(t, n.HasPayload())
	assert.Nil(t, n.Payload())

	defaults := Options{TTL: 90 * time.Second, Urgency: UrgencyLow, Topic: "t1"}
	assert.Equal(t, defaults, n.Resolve(defaults))

	n, err = NewNotification(sub, nil, WithTTL(0))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), n.Resolve(defaults).TTL)
}

func TestNotificationIsImmutable(t *testing.T) {
	s := newSubscriber(t)
	payload := []byte("hello")
	n, err := NewNotification(s.subscription(t, testEndpoint, ""), payload)
	require.NoError(t, err)

	payload[0] = 'J'
	out := n.Payload()
	out[1] = 'A'
	assert.Equal(t, []byte("hello"), n.Payload())
}

func TestNotificationAuthOverride(t *testing.T) {
	s := newSubscriber(t)
	fallback := newTestAuth(t)
	override := newTestAuth(t)

	n, err := NewNotification(s.subscription(t, testEndpoint, ""), nil)
	require.NoError(t, err)
	assert.Same(t, fallback, n.Auth(fallback))

	n, err = NewNotification(s.subscription(t, testEndpoint, ""), nil, WithAuth(override))
	require.NoError(t, err)
	assert.Same(t, override, n.Auth(fallback))
}

func TestNewNotificationMissingCredential(t *testing.T) {
	sub, err := NewSubscription(testEndpoint)
	require.NoError(t, err)

	_, err = NewNotification(sub, []byte("secret"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.ErrorIs(t, err, ece.ErrMissingKey)
}

func TestNewNotificationPayloadBound(t *testing.T) {
	s := newSubscriber(t)

	for _, enc := range []ece.Encoding{ece.AES128GCM, ece.AESGCM} {
		t.Run(enc.String(), func(t *testing.T) {
			sub := s.subscription(t, testEndpoint, enc.String())
			limit := ece.MaxPayloadLength(enc)

			_, err := NewNotification(sub, make([]byte, limit))
			require.NoError(t, err)

			_, err = NewNotification(sub, make([]byte, limit+1))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.ErrorIs(t, err, ece.ErrPayloadTooLarge)

			_, err = NewNotification(sub, make([]byte, 4096))
			assert.ErrorIs(t, err, ece.ErrPayloadTooLarge)
		})
	}
}

func TestNewNotificationRejectsOptions(t *testing.T) {
	sub, err := NewSubscription(testEndpoint)
	require.NoError(t, err)

	tests := map[string]NotificationOption{
		"negative ttl":  WithTTL(-time.Second),
		"urgency":       WithUrgency("urgent"),
		"long topic":    WithTopic(strings.Repeat("a", 33)),
		"topic charset": WithTopic("a b"),
	}
	for name, opt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewNotification(sub, nil, opt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}

	_, err = NewNotification(nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, int64(2419200), o.TTLSeconds())
	assert.Equal(t, UrgencyNormal, o.Urgency)
	assert.Empty(t, o.Topic)
	assert.NoError(t, o.Validate())

	for _, u := range []Urgency{UrgencyVeryLow, UrgencyLow, UrgencyNormal, UrgencyHigh} {
		assert.True(t, u.Valid(), u)
	}
	assert.False(t, Urgency("medium").Valid())

	assert.NoError(t, Options{Topic: strings.Repeat("Ab0-_", 6)}.Validate())
}

func TestMessageBytes(t *testing.T) {
	m := NewMessage("Order shipped",
		WithBody("Your order is on its way"),
		WithIcon("/icon.png"),
		WithTag("order-1", true),
		WithActions(Action{Action: "open", Title: "Open"}),
		WithURL("https://shop.example/orders/1"),
	)

	b, err := m.Bytes()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "Order shipped",
		"options": {
			"body": "Your order is on its way",
			"icon": "/icon.png",
			"tag": "order-1",
			"renotify": true,
			"actions": [{"action": "open", "title": "Open"}],
			"data": {"url": "https://shop.example/orders/1"}
		}
	}`, string(b))
}
