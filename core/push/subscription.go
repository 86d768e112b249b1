package push

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kochabx/webpush/core/crypto/ecc"
	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/core/validator"
)

// Subscription is a validated browser PushSubscription. It is immutable.
type Subscription struct {
	endpoint  string
	publicKey *ecc.PublicKey
	auth      []byte
	encoding  ece.Encoding
}

// SubscriptionOption configures NewSubscription.
type SubscriptionOption func(*subscriptionOptions)

type subscriptionOptions struct {
	p256dh   string
	auth     string
	encoding string
}

// WithKeys sets the subscriber's p256dh public key and auth secret, base64 encoded.
func WithKeys(p256dh, auth string) SubscriptionOption {
	return func(o *subscriptionOptions) {
		o.p256dh = p256dh
		o.auth = auth
	}
}

// WithContentEncoding selects aesgcm or aes128gcm.
func WithContentEncoding(encoding string) SubscriptionOption {
	return func(o *subscriptionOptions) {
		o.encoding = encoding
	}
}

// NewSubscription validates and builds a subscription. A subscription without
// keys is valid for payload-less pushes only.
func NewSubscription(endpoint string, opts ...SubscriptionOption) (*Subscription, error) {
	o := &subscriptionOptions{}
	for _, opt := range opts {
		opt(o)
	}

	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, invalidArgument(fmt.Errorf("endpoint %q is not an absolute http(s) URL", endpoint))
	}

	encoding, err := ece.ParseEncoding(o.encoding)
	if err != nil {
		return nil, invalidArgument(err)
	}

	sub := &Subscription{endpoint: endpoint, encoding: encoding}

	if o.p256dh == "" && o.auth == "" {
		return sub, nil
	}
	if o.p256dh == "" || o.auth == "" {
		return nil, invalidArgument(fmt.Errorf("p256dh and auth must be given together"))
	}

	raw, err := decodeBase64(o.p256dh)
	if err != nil {
		return nil, invalidArgument(fmt.Errorf("p256dh: %w", err))
	}
	if sub.publicKey, err = ecc.ParsePublicKey(raw); err != nil {
		return nil, invalidArgument(fmt.Errorf("p256dh: %w", err))
	}

	if sub.auth, err = decodeBase64(o.auth); err != nil {
		return nil, invalidArgument(fmt.Errorf("auth: %w", err))
	}
	if len(sub.auth) < ece.AuthSecretSize {
		return nil, invalidArgument(fmt.Errorf("auth: secret must be at least %d bytes", ece.AuthSecretSize))
	}

	return sub, nil
}

// Endpoint returns the push service URL.
func (s *Subscription) Endpoint() string {
	return s.endpoint
}

// PublicKey returns the subscriber key or nil.
func (s *Subscription) PublicKey() *ecc.PublicKey {
	return s.publicKey
}

// Auth returns a copy of the auth secret.
func (s *Subscription) Auth() []byte {
	return append([]byte(nil), s.auth...)
}

// Encoding returns the content encoding.
func (s *Subscription) Encoding() ece.Encoding {
	return s.encoding
}

// HasKeys reports whether the subscription can receive a payload.
func (s *Subscription) HasKeys() bool {
	return s.publicKey != nil && len(s.auth) > 0
}

// SubscriptionJSON is the wire shape sent by the browser and kept by stores.
type SubscriptionJSON struct {
	Endpoint        string    `json:"endpoint" validate:"required,http_url"`
	Keys            *KeysJSON `json:"keys,omitempty" validate:"omitempty"`
	ContentEncoding string    `json:"contentEncoding,omitempty" validate:"omitempty,content_encoding"`
}

// KeysJSON holds the subscriber keys.
type KeysJSON struct {
	P256dh string `json:"p256dh" validate:"required,b64key"`
	Auth   string `json:"auth" validate:"required,b64auth"`
}

// Subscription builds the validated value.
func (w *SubscriptionJSON) Subscription() (*Subscription, error) {
	if err := validator.Validate.Struct(w); err != nil {
		return nil, invalidArgument(err)
	}
	opts := []SubscriptionOption{WithContentEncoding(w.ContentEncoding)}
	if w.Keys != nil {
		opts = append(opts, WithKeys(w.Keys.P256dh, w.Keys.Auth))
	}
	return NewSubscription(w.Endpoint, opts...)
}

// ParseSubscription decodes the browser JSON shape.
func ParseSubscription(data []byte) (*Subscription, error) {
	var w SubscriptionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, invalidArgument(fmt.Errorf("subscription json: %w", err))
	}
	return w.Subscription()
}

// JSON returns the wire shape with base64url keys.
func (s *Subscription) JSON() *SubscriptionJSON {
	w := &SubscriptionJSON{
		Endpoint:        s.endpoint,
		ContentEncoding: s.encoding.String(),
	}
	if s.HasKeys() {
		w.Keys = &KeysJSON{
			P256dh: encodeBase64(s.publicKey.Bytes()),
			Auth:   encodeBase64(s.auth),
		}
	}
	return w
}

func (s *Subscription) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.JSON())
}

func (s *Subscription) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSubscription(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
