package ece

import "fmt"

// Encoding is a Web Push content coding identifier.
type Encoding string

const (
	// AES128GCM is the RFC 8291 content coding
	AES128GCM Encoding = "aes128gcm"
	// AESGCM is the legacy draft coding
	AESGCM Encoding = "aesgcm"
)

// DefaultEncoding is used when a subscription does not name one.
const DefaultEncoding = AES128GCM

// ParseEncoding maps an identifier to an Encoding. Identifiers are case sensitive;
// the empty string yields DefaultEncoding.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(s); e {
	case "":
		return DefaultEncoding, nil
	case AES128GCM, AESGCM:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, s)
	}
}

// Valid reports whether e is a supported coding.
func (e Encoding) Valid() bool {
	return e == AES128GCM || e == AESGCM
}

func (e Encoding) String() string {
	return string(e)
}

// MaxPayloadLength returns the largest plaintext that keeps the request body
// within RecordSize, or 0 for an unsupported coding: 3993 bytes for aes128gcm
// (4096 minus the 86-byte header, the 16-byte tag and the delimiter) and 4078
// for aesgcm (4096 minus the tag and the 2-byte padding length). A 4096-byte
// payload never fits and fails with ErrPayloadTooLarge.
func MaxPayloadLength(e Encoding) int {
	switch e {
	case AES128GCM:
		return RecordSize - HeaderSize - TagSize - 1
	case AESGCM:
		return RecordSize - TagSize - paddingLengthSize
	default:
		return 0
	}
}
