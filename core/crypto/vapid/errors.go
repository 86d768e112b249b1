package vapid

import "errors"

var (
	// ErrKeysNotFound indicates that the key store holds no pair for the identity
	ErrKeysNotFound = errors.New("vapid: keys not found")

	// ErrKeyMismatch indicates a private key that does not produce the stored public key
	ErrKeyMismatch = errors.New("vapid: private key does not match public key")

	// ErrInvalidKey indicates key material that cannot be decoded
	ErrInvalidKey = errors.New("vapid: invalid key")

	// ErrIdentityEmpty indicates an identity without a key pair
	ErrIdentityEmpty = errors.New("vapid: identity has no keys")
)

var (
	// ErrInvalidClaims indicates a bad audience, subject or expiry
	ErrInvalidClaims = errors.New("vapid: invalid claims")

	// ErrInvalidToken indicates a token that failed to parse or verify
	ErrInvalidToken = errors.New("vapid: invalid token")

	// ErrInvalidEndpoint indicates an endpoint without scheme or host
	ErrInvalidEndpoint = errors.New("vapid: invalid endpoint")
)
