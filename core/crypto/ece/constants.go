package ece

import "github.com/kochabx/webpush/core/crypto/ecc"

// Sizes used by both content codings
const (
	// SaltSize is the size of the random salt drawn for every message
	SaltSize = 16

	// AuthSecretSize is the minimum size of the subscriber's auth secret
	AuthSecretSize = 16

	// KeySize is the size of the AES-128-GCM content encryption key
	KeySize = 16

	// NonceSize is the size of the AES-GCM nonce
	NonceSize = 12

	// TagSize is the size of the AES-GCM authentication tag
	TagSize = 16

	// RecordSize is the upper bound on the request body accepted by push services
	RecordSize = 4096
)

// aes128gcm framing
const (
	// HeaderSize is salt(16) || rs(4) || idlen(1) || keyid(65)
	HeaderSize = SaltSize + 4 + 1 + ecc.PublicKeySize

	lastRecordDelimiter = 0x02
)

// aesgcm framing
const (
	paddingLengthSize = 2
	maxPaddingLength  = 1<<16 - 1
)
