package internal

// ZeroPad left-pads b with zeros to length bytes.
// A longer slice is returned unchanged so callers can detect overflow themselves.
func ZeroPad(b []byte, length int) []byte {
	if len(b) >= length {
		return b
	}

	result := make([]byte, length)
	copy(result[length-len(b):], b)
	return result
}
