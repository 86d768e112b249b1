package ecc

import "errors"

// Arithmetic errors
var (
	// ErrInvalidOperand indicates that a modular operation's preconditions are violated,
	// e.g. inverting an element that is not coprime to the modulus
	ErrInvalidOperand = errors.New("ecc: invalid operand")

	// ErrInvalidPoint indicates that a point does not satisfy the curve equation
	ErrInvalidPoint = errors.New("ecc: point not on curve")
)

// Key-related errors
var (
	// ErrInvalidEncoding indicates a malformed point encoding (wrong length or marker byte)
	ErrInvalidEncoding = errors.New("ecc: invalid point encoding")

	// ErrInvalidPrivateKey indicates a scalar outside [1, n-1]
	ErrInvalidPrivateKey = errors.New("ecc: invalid private key")

	// ErrPublicKeyEmpty indicates that the public key is nil
	ErrPublicKeyEmpty = errors.New("ecc: public key is empty")

	// ErrPrivateKeyEmpty indicates that the private key is nil or destroyed
	ErrPrivateKeyEmpty = errors.New("ecc: private key is empty")
)

// Signature errors
var (
	// ErrInvalidSignature indicates a signature of the wrong size
	ErrInvalidSignature = errors.New("ecc: invalid signature")

	// ErrDegenerateDigest indicates a digest that reduces to zero modulo the curve order
	ErrDegenerateDigest = errors.New("ecc: digest reduces to zero")

	// ErrRandomSource indicates that the random source could not supply enough bytes
	ErrRandomSource = errors.New("ecc: random source failure")
)
