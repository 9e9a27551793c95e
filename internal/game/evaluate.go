// internal/game/evaluate.go
//
// Pure evaluation of a guess against a secret. Both inputs are validated
// strings of equal length whose digits are pairwise unique; under that
// precondition no per-digit multiplicity bookkeeping is needed, so scoring
// is a single membership pass instead of the usual two-pass counting.

package game

// Evaluate scores guess against secret.
//
// good is the count of positions where the strings agree; fair is the size
// of the digit-set intersection minus good. The set arithmetic is only
// valid because each string contains no repeated digit, which the
// validator guarantees upstream. Deterministic and safe for concurrent use.
func Evaluate(secret, guess string) Feedback {
	var inSecret [10]bool
	for i := 0; i < len(secret); i++ {
		if d := secret[i] - '0'; d < 10 {
			inSecret[d] = true
		}
	}

	good, shared := 0, 0
	for i := 0; i < len(guess); i++ {
		if i < len(secret) && guess[i] == secret[i] {
			good++
		}
		if d := guess[i] - '0'; d < 10 && inSecret[d] {
			shared++
		}
	}

	fair := shared - good
	return Feedback{
		Good:   good,
		Fair:   fair,
		IsPoor: good == 0 && fair == 0,
	}
}
