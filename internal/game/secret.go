// internal/game/secret.go
//
// Secret generation: a secret is a partial permutation of the digits 0-9,
// drawn without replacement. The random source is injected so callers can
// choose true randomness (normal games) or a reproducible sequence (daily
// challenges, tests). Any permutation is acceptable output; a leading zero
// is fine.

package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// NewSecret draws length digits from 0-9 without replacement using rng.
// Given the same rng state and length, the output is always identical.
// length is clamped to [0, 10].
func NewSecret(rng *rand.Rand, length int) string {
	if length < 0 {
		length = 0
	}
	if length > 10 {
		length = 10
	}
	digits := [10]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	for i := 0; i < length; i++ {
		j := i + rng.Intn(10-i)
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits[:length])
}

// RandomSecret returns a secret drawn from a crypto-seeded source.
func RandomSecret(length int) string {
	return NewSecret(rand.New(rand.NewSource(cryptoSeed())), length)
}

// cryptoSeed generates a high-entropy seed for math/rand from crypto/rand.
func cryptoSeed() int64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
