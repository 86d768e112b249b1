package push

import (
	"fmt"
	"time"
)

// Urgency hints how soon the user agent must be woken (RFC 8030 5.3).
type Urgency string

const (
	UrgencyVeryLow Urgency = "very-low"
	UrgencyLow     Urgency = "low"
	UrgencyNormal  Urgency = "normal"
	UrgencyHigh    Urgency = "high"
)

// Valid reports whether u is one of the four RFC 8030 values.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyVeryLow, UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	}
	return false
}

const (
	// DefaultTTL is four weeks, the longest most push services keep a message
	DefaultTTL = 28 * 24 * time.Hour

	maxTopicLength = 32
)

// Options are per-message delivery options.
type Options struct {
	TTL     time.Duration
	Urgency Urgency
	Topic   string
}

// DefaultOptions returns TTL four weeks, normal urgency and no topic.
func DefaultOptions() Options {
	return Options{TTL: DefaultTTL, Urgency: UrgencyNormal}
}

// Validate checks the option values.
func (o Options) Validate() error {
	if o.TTL < 0 {
		return invalidArgument(fmt.Errorf("ttl %s is negative", o.TTL))
	}
	if o.Urgency != "" && !o.Urgency.Valid() {
		return invalidArgument(fmt.Errorf("urgency %q is not one of very-low, low, normal, high", o.Urgency))
	}
	if err := validateTopic(o.Topic); err != nil {
		return invalidArgument(err)
	}
	return nil
}

// TTLSeconds returns the TTL header value.
func (o Options) TTLSeconds() int64 {
	return int64(o.TTL / time.Second)
}

// validateTopic enforces at most 32 characters of the URL-safe base64 alphabet.
func validateTopic(topic string) error {
	if len(topic) > maxTopicLength {
		return fmt.Errorf("topic longer than %d characters", maxTopicLength)
	}
	for i := 0; i < len(topic); i++ {
		c := topic[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("topic %q contains %q outside the base64url alphabet", topic, c)
		}
	}
	return nil
}
