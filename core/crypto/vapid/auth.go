package vapid

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kochabx/webpush/core/crypto/ece"
)

// Auth describes who signs push requests.
type Auth struct {
	// Subject is a mailto: or https: contact for the push service operator.
	Subject string
	// Identity holds the signing key pair.
	Identity *Identity
	// Expiration is the token lifetime, DefaultExpiration when zero.
	Expiration time.Duration
}

// Authorization is a signed token bound to the identity's public key.
type Authorization struct {
	Token     string
	PublicKey string
}

// Authorize signs a token whose audience is the endpoint's push service.
func (a *Auth) Authorize(endpoint string) (*Authorization, error) {
	if a == nil {
		return nil, ErrIdentityEmpty
	}
	kp := a.Identity.Keys()
	if kp == nil {
		return nil, ErrIdentityEmpty
	}

	aud, err := Audience(endpoint)
	if err != nil {
		return nil, err
	}

	lifetime := a.Expiration
	if lifetime <= 0 {
		lifetime = DefaultExpiration
	}

	token, err := Sign(kp, &Claims{
		Audience:  aud,
		Subject:   a.Subject,
		ExpiresAt: timeNow().Add(lifetime),
	})
	if err != nil {
		return nil, err
	}

	return &Authorization{Token: token, PublicKey: kp.PublicKeyString()}, nil
}

// Header returns the RFC 8292 Authorization value.
func (a *Authorization) Header() string {
	return "vapid t=" + a.Token + ", k=" + a.PublicKey
}

// Headers returns the authorization headers for enc. The legacy aesgcm coding
// uses the draft scheme with the key in Crypto-Key.
func (a *Authorization) Headers(enc ece.Encoding) map[string]string {
	if enc == ece.AESGCM {
		return map[string]string{
			"Authorization": "WebPush " + a.Token,
			"Crypto-Key":    "p256ecdsa=" + a.PublicKey,
		}
	}
	return map[string]string{"Authorization": a.Header()}
}

// Audience returns the origin of a push endpoint.
func Audience(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}
