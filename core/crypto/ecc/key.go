package ecc

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	"github.com/kochabx/webpush/core/crypto/ecc/internal"
)

// randReader is the source for scalars and nonces. Tests may replace it.
var randReader io.Reader = rand.Reader

// PublicKey is a validated point on P-256.
type PublicKey struct {
	point *Point
}

// PrivateKey is a scalar in [1, n-1] together with its public point.
type PrivateKey struct {
	d         *big.Int
	publicKey *PublicKey
}

// GenerateKey returns a fresh key pair whose scalar is drawn uniformly from [1, n-1].
func GenerateKey() (*PrivateKey, error) {
	d, err := randScalar(P256())
	if err != nil {
		return nil, err
	}
	return newPrivateKey(d)
}

// NewPrivateKey builds a key from a big-endian scalar.
func NewPrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) == 0 || len(b) > PrivateKeySize {
		return nil, fmt.Errorf("%w: expected at most %d bytes", ErrInvalidPrivateKey, PrivateKeySize)
	}
	return newPrivateKey(new(big.Int).SetBytes(b))
}

func newPrivateKey(d *big.Int) (*PrivateKey, error) {
	curve := P256()
	if d.Sign() <= 0 || d.Cmp(curve.N) >= 0 {
		return nil, ErrInvalidPrivateKey
	}

	pub, err := curve.ScalarBaseMult(d)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{d: d, publicKey: &PublicKey{point: pub}}, nil
}

// randScalar draws k uniformly from [1, n-1] by rejection sampling.
func randScalar(c *Curve) (*big.Int, error) {
	buf := make([]byte, (c.BitSize+7)/8)
	for {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
		}
		k := new(big.Int).SetBytes(buf)
		if k.Sign() > 0 && k.Cmp(c.N) < 0 {
			return k, nil
		}
	}
}

// Public returns the public key corresponding to this private key.
func (priv *PrivateKey) Public() *PublicKey {
	return priv.publicKey
}

// Bytes returns the scalar as 32 big-endian bytes.
func (priv *PrivateKey) Bytes() []byte {
	if priv.d == nil {
		return nil
	}
	return internal.ZeroPad(priv.d.Bytes(), PrivateKeySize)
}

// Equal compares two private keys in constant time.
func (priv *PrivateKey) Equal(other *PrivateKey) bool {
	if priv == nil || other == nil {
		return priv == other
	}
	return subtle.ConstantTimeCompare(priv.Bytes(), other.Bytes()) == 1
}

// ECDH multiplies the peer's public point by the private scalar and returns
// the x-coordinate of the result, left-padded to 32 bytes.
func (priv *PrivateKey) ECDH(peer *PublicKey) ([]byte, error) {
	if priv == nil || priv.d == nil {
		return nil, ErrPrivateKeyEmpty
	}
	if peer == nil || peer.point == nil {
		return nil, ErrPublicKeyEmpty
	}

	shared, err := P256().ScalarMult(peer.point, priv.d)
	if err != nil {
		return nil, err
	}
	if shared.IsInfinity() {
		return nil, fmt.Errorf("%w: shared point at infinity", ErrInvalidPoint)
	}

	return internal.ZeroPad(shared.X.Bytes(), CoordinateSize), nil
}

// Destroy zeroes the scalar. The key must not be used afterwards.
func (priv *PrivateKey) Destroy() {
	if priv.d != nil {
		priv.d.SetInt64(0)
		priv.d = nil
	}
}

// ParsePublicKey decodes and validates an uncompressed public key.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	p, err := Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{point: p}, nil
}

// NewPublicKey wraps a point after validating it.
func NewPublicKey(p *Point) (*PublicKey, error) {
	if err := P256().Validate(p); err != nil {
		return nil, err
	}
	return &PublicKey{point: p.Clone()}, nil
}

// Point returns a copy of the public point.
func (pub *PublicKey) Point() *Point {
	return pub.point.Clone()
}

// Bytes returns the 65-byte uncompressed encoding.
func (pub *PublicKey) Bytes() []byte {
	return Marshal(pub.point)
}

// Equal compares two public keys in constant time.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return subtle.ConstantTimeCompare(pub.Bytes(), other.Bytes()) == 1
}
