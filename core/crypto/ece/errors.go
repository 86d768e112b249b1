package ece

import "errors"

var (
	// ErrUnsupportedEncoding indicates a content coding other than aes128gcm or aesgcm
	ErrUnsupportedEncoding = errors.New("ece: unsupported content encoding")

	// ErrMissingKey indicates a missing subscriber public key or a short auth secret
	ErrMissingKey = errors.New("ece: missing subscriber key material")

	// ErrPayloadTooLarge indicates a plaintext that cannot fit in a single record
	ErrPayloadTooLarge = errors.New("ece: payload too large")
)

var (
	// ErrDecryptionFailed indicates that the authentication tag did not verify
	ErrDecryptionFailed = errors.New("ece: decryption failed")

	// ErrInvalidRecord indicates a malformed header, key id or padding
	ErrInvalidRecord = errors.New("ece: invalid record")

	// ErrRandomSource indicates that the salt could not be drawn
	ErrRandomSource = errors.New("ece: random source failure")
)
