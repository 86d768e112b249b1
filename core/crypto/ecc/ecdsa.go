package ecc

import (
	"fmt"
	"math/big"

	"github.com/kochabx/webpush/core/crypto/ecc/internal"
)

// Sign produces a raw r || s ECDSA signature of digest, each half left-padded
// to 32 bytes. A fresh nonce is drawn for every signature; when r or s
// degenerates to zero the nonce is discarded and a new one drawn. A digest
// that reduces to zero mod n is refused, since no nonce can repair it.
func Sign(priv *PrivateKey, digest []byte) ([]byte, error) {
	if priv == nil || priv.d == nil {
		return nil, ErrPrivateKeyEmpty
	}
	if priv.d.Sign() == 0 {
		return nil, ErrInvalidPrivateKey
	}

	curve := P256()
	e := hashToInt(digest, curve)
	if Mod(e, curve.N).Sign() == 0 {
		return nil, ErrDegenerateDigest
	}

	for {
		k, err := randScalar(curve)
		if err != nil {
			return nil, err
		}

		R, err := curve.ScalarBaseMult(k)
		if err != nil {
			return nil, err
		}
		r := Mod(R.X, curve.N)
		if r.Sign() == 0 {
			continue
		}

		// s = k⁻¹ (e + r·d) mod n
		kInv, err := Inverse(k, curve.N)
		if err != nil {
			return nil, err
		}
		s := Mul(kInv, Mod(new(big.Int).Add(e, Mul(r, priv.d, curve.N)), curve.N), curve.N)
		if s.Sign() == 0 {
			continue
		}

		sig := make([]byte, 0, SignatureSize)
		sig = append(sig, internal.ZeroPad(r.Bytes(), CoordinateSize)...)
		sig = append(sig, internal.ZeroPad(s.Bytes(), CoordinateSize)...)
		return sig, nil
	}
}

// Verify reports whether sig is a valid raw r || s signature of digest by pub.
func Verify(pub *PublicKey, digest, sig []byte) bool {
	if pub == nil || len(sig) != SignatureSize {
		return false
	}

	curve := P256()
	r := new(big.Int).SetBytes(sig[:CoordinateSize])
	s := new(big.Int).SetBytes(sig[CoordinateSize:])
	if r.Sign() <= 0 || r.Cmp(curve.N) >= 0 || s.Sign() <= 0 || s.Cmp(curve.N) >= 0 {
		return false
	}

	e := hashToInt(digest, curve)
	w, err := Inverse(s, curve.N)
	if err != nil {
		return false
	}
	u1 := Mul(e, w, curve.N)
	u2 := Mul(r, w, curve.N)

	p1, err := curve.ScalarBaseMult(u1)
	if err != nil {
		return false
	}
	p2, err := curve.ScalarMult(pub.point, u2)
	if err != nil {
		return false
	}
	X, err := curve.Add(p1, p2)
	if err != nil || X.IsInfinity() {
		return false
	}

	return Mod(X.X, curve.N).Cmp(r) == 0
}

// SplitSignature returns r and s of a raw signature.
func SplitSignature(sig []byte) (r, s *big.Int, err error) {
	if len(sig) != SignatureSize {
		return nil, nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureSize, len(sig))
	}
	return new(big.Int).SetBytes(sig[:CoordinateSize]), new(big.Int).SetBytes(sig[CoordinateSize:]), nil
}

// hashToInt converts the leftmost n-bit-length bits of the digest to an integer.
func hashToInt(digest []byte, c *Curve) *big.Int {
	orderBytes := (c.N.BitLen() + 7) / 8
	if len(digest) > orderBytes {
		digest = digest[:orderBytes]
	}

	e := new(big.Int).SetBytes(digest)
	if excess := len(digest)*8 - c.N.BitLen(); excess > 0 {
		e.Rsh(e, uint(excess))
	}
	return e
}
