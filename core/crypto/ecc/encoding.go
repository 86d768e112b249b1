package ecc

import (
	"fmt"
	"math/big"

	"github.com/kochabx/webpush/core/crypto/ecc/internal"
)

// Marshal encodes p in the uncompressed form 0x04 || X || Y with each
// coordinate left-padded to CoordinateSize bytes. The point at infinity
// has no uncompressed encoding and yields nil.
func Marshal(p *Point) []byte {
	if p.IsInfinity() {
		return nil
	}

	out := make([]byte, 0, PublicKeySize)
	out = append(out, UncompressedPointTag)
	out = append(out, internal.ZeroPad(p.X.Bytes(), CoordinateSize)...)
	out = append(out, internal.ZeroPad(p.Y.Bytes(), CoordinateSize)...)
	return out
}

// Unmarshal decodes an uncompressed point and validates it against the curve.
// A buffer that is not exactly PublicKeySize bytes or does not start with
// 0x04 fails with ErrInvalidEncoding; an off-curve point fails with ErrInvalidPoint.
func Unmarshal(b []byte) (*Point, error) {
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEncoding, PublicKeySize, len(b))
	}
	if b[0] != UncompressedPointTag {
		return nil, fmt.Errorf("%w: only uncompressed points are supported", ErrInvalidEncoding)
	}

	half := (len(b) - 1) / 2
	p := &Point{
		X: new(big.Int).SetBytes(b[1 : 1+half]),
		Y: new(big.Int).SetBytes(b[1+half:]),
	}

	if err := P256().Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}
