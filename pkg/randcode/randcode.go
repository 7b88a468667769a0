package randcode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is the uppercase alphanumeric set used for campaign codes,
// coupon codes and form-link tokens.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// limit is the largest multiple of len(Alphabet) that fits in a byte.
// Bytes at or above it are rejected so every character stays equally
// likely.
const limit = 256 - 256%len(Alphabet)

// New draws n characters uniformly from Alphabet.
func New(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("randcode: invalid length %d", n)
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("randcode: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
