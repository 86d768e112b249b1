package push

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/crypto/ecc"
	"github.com/kochabx/webpush/core/crypto/vapid"
)

const testEndpoint = "https://push.example.net/wpush/v2/gAAAAABk"

// subscriber is the user agent side of a subscription.
type subscriber struct {
	priv *ecc.PrivateKey
	auth []byte
}

func newSubscriber(t *testing.T) *subscriber {
	t.Helper()
	priv, err := ecc.GenerateKey()
	require.NoError(t, err)
	auth := make([]byte, 16)
	for i := range auth {
		auth[i] = byte(i + 1)
	}
	return &subscriber{priv: priv, auth: auth}
}

func (s *subscriber) p256dh() string {
	return base64.RawURLEncoding.EncodeToString(s.priv.Public().Bytes())
}

func (s *subscriber) authString() string {
	return base64.RawURLEncoding.EncodeToString(s.auth)
}

func (s *subscriber) subscription(t *testing.T, endpoint, encoding string) *Subscription {
	t.Helper()
	sub, err := NewSubscription(endpoint, WithKeys(s.p256dh(), s.authString()), WithContentEncoding(encoding))
	require.NoError(t, err)
	return sub
}

func newTestAuth(t *testing.T) *vapid.Auth {
	t.Helper()
	kp, err := vapid.GenerateKeyPair()
	require.NoError(t, err)
	return &vapid.Auth{Subject: "mailto:ops@example.com", Identity: vapid.NewIdentity("default", kp)}
}
