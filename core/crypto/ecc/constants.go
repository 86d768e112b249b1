package ecc

// Encoding parameters for NIST P-256
const (
	// CoordinateSize is the size in bytes of each coordinate (X or Y)
	CoordinateSize = 32

	// UncompressedPointTag marks the uncompressed format: 0x04 || X || Y
	UncompressedPointTag = 0x04

	// PublicKeySize is the size of an uncompressed public key in bytes
	// Format: [tag:1][X:32][Y:32]
	PublicKeySize = 1 + 2*CoordinateSize // 65 bytes

	// PrivateKeySize is the size of a private scalar in bytes
	PrivateKeySize = 32

	// SignatureSize is the size of a raw r || s signature
	SignatureSize = 2 * CoordinateSize // 64 bytes
)
