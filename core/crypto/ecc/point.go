package ecc

import "math/big"

// Point is an affine curve point. The zero value of infinity is false;
// use Infinity to obtain the identity element.
type Point struct {
	X, Y     *big.Int
	infinity bool
}

// NewPoint returns a point with copies of x and y.
func NewPoint(x, y *big.Int) *Point {
	return &Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// Infinity returns the point at infinity.
func Infinity() *Point {
	return &Point{infinity: true}
}

// IsInfinity reports whether p is the point at infinity.
func (p *Point) IsInfinity() bool {
	return p == nil || p.infinity
}

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	if p.IsInfinity() {
		return Infinity()
	}
	return NewPoint(p.X, p.Y)
}

// Equal reports whether p and q are the same point.
func (p *Point) Equal(q *Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}
