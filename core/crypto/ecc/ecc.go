// Package ecc implements the elliptic curve arithmetic needed by Web Push.
//
// It provides:
//   - arbitrary-precision modular arithmetic with canonical results in [0, m)
//   - affine point arithmetic on the NIST P-256 curve (add, double, scalar multiply)
//   - the uncompressed SEC1 point encoding (0x04 || X || Y, 65 bytes)
//   - private and public keys, ECDH shared secrets and raw r||s ECDSA signatures
//
// Every operation works on immutable inputs and returns freshly allocated values.
// Randomness is drawn inside each call and is never accepted as a parameter.
//
// Example usage:
//
//	priv, err := ecc.GenerateKey()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer priv.Destroy()
//
//	peer, err := ecc.ParsePublicKey(encoded)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	secret, err := priv.ECDH(peer)
package ecc
