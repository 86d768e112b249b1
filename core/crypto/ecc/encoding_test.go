package ecc

import (
	"errors"
	"testing"
)

func TestMarshalRoundTrip(t *testing.T) {
	curve := P256()

	points := []*Point{curve.G()}
	for i := 0; i < 4; i++ {
		priv, err := GenerateKey()
		if err != nil {
			t.Fatal(err)
		}
		points = append(points, priv.Public().Point())
	}

	for _, p := range points {
		encoded := Marshal(p)
		if len(encoded) != PublicKeySize {
			t.Fatalf("encoded length = %d, want %d", len(encoded), PublicKeySize)
		}
		if encoded[0] != UncompressedPointTag {
			t.Fatalf("encoded marker = %#x, want 0x04", encoded[0])
		}

		decoded, err := Unmarshal(encoded)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if !decoded.Equal(p) {
			t.Fatal("decode(encode(p)) != p")
		}
	}
}

func TestMarshalPadsCoordinates(t *testing.T) {
	// Find a multiple of G whose x-coordinate has a leading zero byte.
	curve := P256()
	p := curve.G()
	var err error
	for i := 0; i < 2000; i++ {
		if len(p.X.Bytes()) < CoordinateSize || len(p.Y.Bytes()) < CoordinateSize {
			break
		}
		if p, err = curve.Add(p, curve.G()); err != nil {
			t.Fatal(err)
		}
	}
	if len(p.X.Bytes()) == CoordinateSize && len(p.Y.Bytes()) == CoordinateSize {
		t.Skip("no short coordinate found")
	}

	encoded := Marshal(p)
	if len(encoded) != PublicKeySize {
		t.Fatalf("encoded length = %d, want %d", len(encoded), PublicKeySize)
	}
	decoded, err := Unmarshal(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(p) {
		t.Error("short coordinate did not round trip")
	}
}

func TestUnmarshalErrors(t *testing.T) {
	valid := Marshal(P256().G())

	wrongTag := append([]byte(nil), valid...)
	wrongTag[0] = 0x02

	offCurve := append([]byte(nil), valid...)
	offCurve[PublicKeySize-1] ^= 0x01

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrInvalidEncoding},
		{"64 bytes", valid[1:], ErrInvalidEncoding},
		{"66 bytes", append(append([]byte(nil), valid...), 0x00), ErrInvalidEncoding},
		{"wrong marker", wrongTag, ErrInvalidEncoding},
		{"off curve", offCurve, ErrInvalidPoint},
		{"all zero coordinates", append([]byte{UncompressedPointTag}, make([]byte, 64)...), ErrInvalidPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Unmarshal error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMarshalInfinity(t *testing.T) {
	if Marshal(Infinity()) != nil {
		t.Error("infinity has no uncompressed encoding")
	}
}

func TestUnmarshalCoordinateAbovePrime(t *testing.T) {
	curve := P256()
	buf := make([]byte, PublicKeySize)
	buf[0] = UncompressedPointTag
	curve.P.FillBytes(buf[1:33])
	curve.Gy.FillBytes(buf[33:])

	if _, err := Unmarshal(buf); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("x = p should be rejected, got %v", err)
	}
}
