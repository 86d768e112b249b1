package push

import (
	"fmt"
	"time"

	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/core/crypto/vapid"
)

// Notification is one message for one subscription. It is immutable.
type Notification struct {
	subscription *Subscription
	payload      []byte

	ttl     *time.Duration
	urgency Urgency
	topic   string
	auth    *vapid.Auth
}

// NotificationOption configures NewNotification.
type NotificationOption func(*Notification)

// WithTTL sets how long the push service keeps an undelivered message.
func WithTTL(ttl time.Duration) NotificationOption {
	return func(n *Notification) {
		n.ttl = &ttl
	}
}

// WithUrgency sets the Urgency header.
func WithUrgency(u Urgency) NotificationOption {
	return func(n *Notification) {
		n.urgency = u
	}
}

// WithTopic sets a topic that replaces pending messages with the same topic.
func WithTopic(topic string) NotificationOption {
	return func(n *Notification) {
		n.topic = topic
	}
}

// WithAuth overrides the sender's VAPID auth for this notification.
func WithAuth(auth *vapid.Auth) NotificationOption {
	return func(n *Notification) {
		n.auth = auth
	}
}

// NewNotification validates a notification. A nil or empty payload sends a
// push without a body.
func NewNotification(sub *Subscription, payload []byte, opts ...NotificationOption) (*Notification, error) {
	if sub == nil {
		return nil, invalidArgument(fmt.Errorf("subscription is nil"))
	}

	n := &Notification{subscription: sub}
	if len(payload) > 0 {
		n.payload = append([]byte(nil), payload...)
	}
	for _, opt := range opts {
		opt(n)
	}

	if len(n.payload) > 0 {
		if !sub.HasKeys() {
			return nil, ErrMissingCredential.WithCause(fmt.Errorf("%w: payload requires p256dh and auth", ece.ErrMissingKey))
		}
		if limit := ece.MaxPayloadLength(sub.Encoding()); len(n.payload) > limit {
			return nil, invalidArgument(fmt.Errorf("%w: %d bytes exceeds %d", ece.ErrPayloadTooLarge, len(n.payload), limit))
		}
	}

	partial := Options{Urgency: n.urgency, Topic: n.topic}
	if n.ttl != nil {
		partial.TTL = *n.ttl
	}
	if err := partial.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Subscription returns the target subscription.
func (n *Notification) Subscription() *Subscription {
	return n.subscription
}

// Payload returns a copy of the plaintext payload, nil when absent.
func (n *Notification) Payload() []byte {
	if n.payload == nil {
		return nil
	}
	return append([]byte(nil), n.payload...)
}

// HasPayload reports whether the notification carries a body.
func (n *Notification) HasPayload() bool {
	return len(n.payload) > 0
}

// Resolve returns the effective options, taking each unset field from defaults.
func (n *Notification) Resolve(defaults Options) Options {
	o := defaults
	if n.ttl != nil {
		o.TTL = *n.ttl
	}
	if n.urgency != "" {
		o.Urgency = n.urgency
	}
	if n.topic != "" {
		o.Topic = n.topic
	}
	return o
}

// Auth returns the notification's VAPID auth, or fallback when none was set.
func (n *Notification) Auth(fallback *vapid.Auth) *vapid.Auth {
	if n.auth != nil {
		return n.auth
	}
	return fallback
}
