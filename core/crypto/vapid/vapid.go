// Package vapid implements Voluntary Application Server Identification (RFC 8292).
//
// A sending identity owns one P-256 key pair, generated once and persisted
// through a KeyStore. Every push request carries a short-lived ES256 JWT
// signed with that key:
//
//	id, err := vapid.Provision(ctx, store, "default")
//	if err != nil {
//	    return err
//	}
//	auth := &vapid.Auth{Subject: "mailto:ops@example.com", Identity: id}
//	a, err := auth.Authorize(sub.Endpoint)
//	if err != nil {
//	    return err
//	}
//	req.Header.Set("Authorization", a.Header())
//
// Signatures are produced by package ecc with a fresh nonce per token.
package vapid
