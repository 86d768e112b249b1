// Package ece implements Web Push message encryption.
//
// Two content codings are supported:
//   - aes128gcm (RFC 8291 over RFC 8188), the current standard
//   - aesgcm (draft-ietf-webpush-encryption-04), still produced for older user agents
//
// Every call to Encrypt generates a fresh ephemeral P-256 key pair and a fresh
// 16-byte salt, so the content encryption key and nonce are never reused.
//
// Example usage:
//
//	msg, err := ece.Encrypt(subscriberKey, authSecret, []byte("hello"), ece.AES128GCM)
//	if err != nil {
//	    return err
//	}
//	for k, v := range msg.Headers() {
//	    req.Header.Set(k, v)
//	}
//	req.Body = io.NopCloser(bytes.NewReader(msg.Body))
//
// Decrypt performs the user agent side and is mainly useful for tests and tooling.
package ece
