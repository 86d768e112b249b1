package ecc

import (
	"crypto/sha256"
	"testing"
)

// BenchmarkScalarBaseMult benchmarks public key derivation
func BenchmarkScalarBaseMult(b *testing.B) {
	curve := P256()
	k, err := randScalar(curve)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := curve.ScalarBaseMult(k); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkECDH benchmarks shared secret derivation
func BenchmarkECDH(b *testing.B) {
	priv, err := GenerateKey()
	if err != nil {
		b.Fatal(err)
	}
	defer priv.Destroy()
	peer, err := GenerateKey()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := priv.ECDH(peer.Public()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSign benchmarks raw ECDSA signing
func BenchmarkSign(b *testing.B) {
	priv, err := GenerateKey()
	if err != nil {
		b.Fatal(err)
	}
	defer priv.Destroy()
	digest := sha256.Sum256([]byte("benchmark"))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Sign(priv, digest[:]); err != nil {
			b.Fatal(err)
		}
	}
}
