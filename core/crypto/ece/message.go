package ece

import "encoding/base64"

// Message is an encrypted Web Push body plus the values the push service
// needs to route it to the user agent.
type Message struct {
	Encoding Encoding
	// Body is the request body. For aes128gcm it carries its own header.
	Body []byte
	// Salt is the per-message salt.
	Salt []byte
	// PublicKey is the ephemeral sender key, uncompressed.
	PublicKey []byte
}

// Headers returns the HTTP headers describing the coding. For aesgcm the salt
// and sender key travel in the Encryption and Crypto-Key headers.
func (m *Message) Headers() map[string]string {
	headers := map[string]string{
		"Content-Encoding": m.Encoding.String(),
	}
	if m.Encoding == AESGCM {
		headers["Encryption"] = "salt=" + base64.RawURLEncoding.EncodeToString(m.Salt)
		headers["Crypto-Key"] = "dh=" + base64.RawURLEncoding.EncodeToString(m.PublicKey)
	}
	return headers
}

// Len returns the body length.
func (m *Message) Len() int {
	return len(m.Body)
}
