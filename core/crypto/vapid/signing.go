package vapid

import (
	"crypto/sha256"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/webpush/core/crypto/ecc"
)

// SigningMethodECC is ES256 computed by package ecc. Keys are *ecc.PrivateKey
// for signing and *ecc.PublicKey for verification. Tokens it produces verify
// under jwt.SigningMethodES256.
type SigningMethodECC struct{}

// SigningMethodVAPID is the method used for every VAPID token.
var SigningMethodVAPID = &SigningMethodECC{}

func (m *SigningMethodECC) Alg() string {
	return "ES256"
}

// Sign returns the 64-byte r||s signature of signingString.
func (m *SigningMethodECC) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(*ecc.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	digest := sha256.Sum256([]byte(signingString))
	return ecc.Sign(priv, digest[:])
}

func (m *SigningMethodECC) Verify(signingString string, sig []byte, key any) error {
	pub, ok := key.(*ecc.PublicKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	if len(sig) != ecc.SignatureSize {
		return jwt.ErrSignatureInvalid
	}
	digest := sha256.Sum256([]byte(signingString))
	if !ecc.Verify(pub, digest[:], sig) {
		return jwt.ErrECDSAVerification
	}
	return nil
}
