package ecc

import (
	"fmt"
	"math/big"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// Add returns a + b without reduction.
func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Mod returns a mod m in the canonical range [0, m).
// big.Int.Mod already implements Euclidean modulus, the explicit
// correction keeps the contract independent of that detail.
func Mod(a, m *big.Int) *big.Int {
	r := new(big.Int).Mod(a, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	return r
}

// Sub returns (a - b) mod m.
func Sub(a, b, m *big.Int) *big.Int {
	return Mod(new(big.Int).Sub(a, b), m)
}

// Mul returns (a * b) mod m.
func Mul(a, b, m *big.Int) *big.Int {
	return Mod(new(big.Int).Mul(a, b), m)
}

// Div returns a * inverse(b, m) mod m.
func Div(a, b, m *big.Int) (*big.Int, error) {
	inv, err := Inverse(b, m)
	if err != nil {
		return nil, err
	}
	return Mul(a, inv, m), nil
}

// Inverse returns the multiplicative inverse of a modulo m using the
// extended Euclidean algorithm. It fails with ErrInvalidOperand when
// gcd(a, m) != 1 or m <= 1.
func Inverse(a, m *big.Int) (*big.Int, error) {
	if m.Cmp(one) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 1", ErrInvalidOperand)
	}

	// Invariant: oldS*a ≡ oldR (mod m) and s*a ≡ r (mod m)
	oldR, r := Mod(a, m), new(big.Int).Set(m)
	oldS, s := big.NewInt(1), big.NewInt(0)
	q, tmp := new(big.Int), new(big.Int)

	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)
	}

	if oldR.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: operand is not coprime to the modulus", ErrInvalidOperand)
	}

	return Mod(oldS, m), nil
}
