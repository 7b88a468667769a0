package randcode

import (
	"strings"
	"testing"
)

func TestNewLengthAndAlphabet(t *testing.T) {
	for _, n := range []int{1, 12, 16} {
		code, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		if len(code) != n {
			t.Fatalf("New(%d) = %q, length %d", n, code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
	}
}

func TestNewUniqueEnough(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		code, err := New(12)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestNewDrawsEveryCharacter(t *testing.T) {
	counts := make(map[rune]int, len(Alphabet))
	for i := 0; i < 1000; i++ {
		code, err := New(36)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for _, r := range code {
			counts[r]++
		}
	}

	// 36000 draws over 36 characters, ~1000 each. A count outside
	// [700, 1300] is far beyond sampling noise.
	for _, r := range Alphabet {
		n := counts[r]
		if n < 700 || n > 1300 {
			t.Fatalf("character %q drawn %d times out of 36000", r, n)
		}
	}
}
