// internal/game/validate.go
//
// Syntactic validation of a candidate guess. A guess is accepted iff it has
// the mode's exact length, consists of decimal digits only, and repeats no
// digit. Each rejection carries a distinguishable sentinel so callers can
// surface the failed rule. Pure; no I/O.

package game

import (
	"errors"
	"fmt"
	"strings"
)

// Validation sentinels, matchable via errors.Is.
var (
	ErrWrongLength    = errors.New("wrong guess length")
	ErrNotDigits      = errors.New("guess must contain only digits")
	ErrDuplicateDigit = errors.New("guess repeats a digit")
)

// Validate checks a raw guess against the given secret length and returns
// the normalized (whitespace-trimmed) guess on success.
func Validate(raw string, length int) (string, error) {
	guess := strings.TrimSpace(raw)
	if len(guess) != length {
		return "", fmt.Errorf("%w: got %d, want %d", ErrWrongLength, len(guess), length)
	}
	var seen [10]bool
	for i := 0; i < len(guess); i++ {
		c := guess[i]
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrNotDigits, rune(c))
		}
		d := c - '0'
		if seen[d] {
			return "", fmt.Errorf("%w: %c", ErrDuplicateDigit, c)
		}
		seen[d] = true
	}
	return guess, nil
}
