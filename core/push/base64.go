package push

import (
	"encoding/base64"
	"strings"
)

// decodeBase64 accepts standard or URL alphabets, padded or not. Browsers
// send URL-safe unpadded keys but stored records vary.
func decodeBase64(s string) ([]byte, error) {
	enc := base64.RawStdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.RawURLEncoding
	}
	return enc.DecodeString(strings.TrimRight(s, "="))
}

func encodeBase64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
