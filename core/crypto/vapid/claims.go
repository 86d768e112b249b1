package vapid

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MaxExpiration is the furthest a token may expire from now
	MaxExpiration = 24 * time.Hour
	// DefaultExpiration is used when Auth.Expiration is unset
	DefaultExpiration = 12 * time.Hour
)

// Claims is the VAPID claim set {aud, exp, sub}.
type Claims struct {
	Audience  string
	Subject   string
	ExpiresAt time.Time
}

// Validate checks the claims against now.
func (c *Claims) Validate(now time.Time) error {
	if !strings.HasPrefix(c.Subject, "mailto:") && !strings.HasPrefix(c.Subject, "https:") {
		return fmt.Errorf("%w: subject %q must be a mailto: or https: URI", ErrInvalidClaims, c.Subject)
	}

	aud, err := url.Parse(c.Audience)
	if err != nil || aud.Scheme == "" || aud.Host == "" || (aud.Path != "" && aud.Path != "/") {
		return fmt.Errorf("%w: audience %q is not an origin", ErrInvalidClaims, c.Audience)
	}

	if !c.ExpiresAt.After(now) {
		return fmt.Errorf("%w: token already expired", ErrInvalidClaims)
	}
	if c.ExpiresAt.Sub(now) > MaxExpiration {
		return fmt.Errorf("%w: expiry more than %s ahead", ErrInvalidClaims, MaxExpiration)
	}
	return nil
}

// aud is a plain string, not the array RegisteredClaims would emit.
func (c *Claims) mapClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"aud": c.Audience,
		"exp": c.ExpiresAt.Unix(),
		"sub": c.Subject,
	}
}
