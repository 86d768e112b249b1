package vapid

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/webpush/core/crypto/ecc"
)

var timeNow = time.Now

// Sign validates claims and signs them with the pair's private key.
func Sign(kp *KeyPair, claims *Claims) (string, error) {
	if kp == nil {
		return "", ErrIdentityEmpty
	}
	if err := claims.Validate(timeNow()); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(SigningMethodVAPID, claims.mapClaims())
	signed, err := token.SignedString(kp.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("vapid: sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token with the standard library ES256 verifier and
// returns its claims. It is what a push service does with our tokens.
func ParseToken(token string, pub *ecc.PublicKey) (*Claims, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: public key is empty", ErrInvalidToken)
	}
	key, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), pub.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	aud, _ := mc["aud"].(string)
	sub, _ := mc["sub"].(string)

	return &Claims{Audience: aud, Subject: sub, ExpiresAt: exp.Time}, nil
}
