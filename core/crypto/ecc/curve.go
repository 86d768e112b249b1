package ecc

import (
	"fmt"
	"math/big"
	"sync"
)

// Curve holds the domain parameters of a short Weierstrass curve
// y² = x³ + ax + b over the prime field p.
type Curve struct {
	Name    string
	P       *big.Int // field prime
	A       *big.Int // coefficient a
	B       *big.Int // coefficient b
	N       *big.Int // order of the base point
	Gx, Gy  *big.Int // base point
	BitSize int
}

var (
	p256     *Curve
	p256Once sync.Once
)

func initP256() {
	p256 = &Curve{
		Name:    "P-256",
		P:       mustHex("ffffffff00000001000000000000000000000000ffffffffffffffffffffffff"),
		B:       mustHex("5ac635d8aa3a93e7b3ebbd55769886bc651d06b0cc53b0f63bce3c3e27d2604b"),
		N:       mustHex("ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551"),
		Gx:      mustHex("6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296"),
		Gy:      mustHex("4fe342e2fe1a7f9b8ee7eb4a7c0f9e162bce33576b315ececbb6406837bf51f5"),
		BitSize: 256,
	}
	// a = -3 mod p
	p256.A = Sub(zero, big.NewInt(3), p256.P)
}

// P256 returns the NIST P-256 curve mandated by Web Push.
// The parameters are fixed and must not be modified.
func P256() *Curve {
	p256Once.Do(initP256)
	return p256
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("ecc: invalid curve constant " + s)
	}
	return v
}

// G returns a copy of the base point.
func (c *Curve) G() *Point {
	return NewPoint(c.Gx, c.Gy)
}

// IsOnCurve reports whether p satisfies the curve equation with both
// coordinates reduced into [0, P). The point at infinity is on every curve.
func (c *Curve) IsOnCurve(p *Point) bool {
	if p == nil {
		return false
	}
	if p.IsInfinity() {
		return true
	}
	if p.X.Sign() < 0 || p.X.Cmp(c.P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(c.P) >= 0 {
		return false
	}

	// y² = x³ + ax + b
	lhs := Mul(p.Y, p.Y, c.P)
	x3 := Mul(Mul(p.X, p.X, c.P), p.X, c.P)
	rhs := Mod(new(big.Int).Add(new(big.Int).Add(x3, Mul(c.A, p.X, c.P)), c.B), c.P)

	return lhs.Cmp(rhs) == 0
}

// Validate returns ErrInvalidPoint unless p is a finite point on the curve.
func (c *Curve) Validate(p *Point) error {
	if p == nil || p.IsInfinity() {
		return fmt.Errorf("%w: point at infinity", ErrInvalidPoint)
	}
	if !c.IsOnCurve(p) {
		return ErrInvalidPoint
	}
	return nil
}

// Negate returns -p.
func (c *Curve) Negate(p *Point) *Point {
	if p.IsInfinity() {
		return Infinity()
	}
	return NewPoint(p.X, Sub(zero, p.Y, c.P))
}

// Add returns p + q using the chord-and-tangent rule.
// Adding the point at infinity returns the other operand, adding a point
// to its negation returns infinity, and p + p is computed as a doubling.
func (c *Curve) Add(p, q *Point) (*Point, error) {
	switch {
	case p.IsInfinity():
		return q.Clone(), nil
	case q.IsInfinity():
		return p.Clone(), nil
	}

	if p.X.Cmp(q.X) == 0 {
		if p.Y.Cmp(q.Y) == 0 {
			return c.Double(p)
		}
		// same x, different y: q = -p
		return Infinity(), nil
	}

	// λ = (y2 - y1) / (x2 - x1)
	lambda, err := Div(Sub(q.Y, p.Y, c.P), Sub(q.X, p.X, c.P), c.P)
	if err != nil {
		return nil, err
	}

	return c.chord(p, q, lambda), nil
}

// Double returns 2p using the tangent at p.
func (c *Curve) Double(p *Point) (*Point, error) {
	if p.IsInfinity() || p.Y.Sign() == 0 {
		return Infinity(), nil
	}

	// λ = (3x² + a) / 2y
	num := Mod(new(big.Int).Add(Mul(big.NewInt(3), Mul(p.X, p.X, c.P), c.P), c.A), c.P)
	den := Mul(big.NewInt(2), p.Y, c.P)
	lambda, err := Div(num, den, c.P)
	if err != nil {
		return nil, err
	}

	return c.chord(p, p, lambda), nil
}

// chord computes the third intersection for slope lambda and reflects it.
func (c *Curve) chord(p, q *Point, lambda *big.Int) *Point {
	// x3 = λ² - x1 - x2
	x3 := Sub(Sub(Mul(lambda, lambda, c.P), p.X, c.P), q.X, c.P)
	// y3 = λ(x1 - x3) - y1
	y3 := Sub(Mul(lambda, Sub(p.X, x3, c.P), c.P), p.Y, c.P)
	return &Point{X: x3, Y: y3}
}

// ScalarMult returns k·p using double-and-add, most significant bit first.
// The point is validated before use and k is reduced modulo the curve order.
func (c *Curve) ScalarMult(p *Point, k *big.Int) (*Point, error) {
	if err := c.Validate(p); err != nil {
		return nil, err
	}

	scalar := Mod(k, c.N)
	result := Infinity()

	for i := scalar.BitLen() - 1; i >= 0; i-- {
		var err error
		if result, err = c.Double(result); err != nil {
			return nil, err
		}
		if scalar.Bit(i) == 1 {
			if result, err = c.Add(result, p); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// ScalarBaseMult returns k·G.
func (c *Curve) ScalarBaseMult(k *big.Int) (*Point, error) {
	return c.ScalarMult(c.G(), k)
}
