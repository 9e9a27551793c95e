// internal/daily/daily.go
//
// Deterministic daily-challenge derivation. Every player derives the same
// secret for a given UTC calendar day: the seed is that day's UTC-midnight
// timestamp in epoch seconds, fed into the same seeded-permutation path the
// normal secret generator uses. Verify re-derives and compares, so drift or
// tampering in a stored challenge is detectable.

package daily

import (
	"math/rand"
	"time"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateKey parses a YYYY-MM-DD key into UTC midnight of that day.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", key, time.UTC)
}

// Seed returns the derivation seed for t's UTC calendar day: the epoch
// seconds of that day's UTC midnight.
func Seed(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// ForDate derives the day's secret and the seed it came from. Two calls
// for the same UTC day yield byte-identical secrets; different days yield
// different seeds and, overwhelmingly, different secrets.
func ForDate(t time.Time, length int) (secret string, seed int64) {
	seed = Seed(t)
	return game.NewSecret(rand.New(rand.NewSource(seed)), length), seed
}

// Verify reports whether secret is exactly what ForDate would derive for
// t's calendar day at the given length.
func Verify(t time.Time, secret string, length int) bool {
	derived, _ := ForDate(t, length)
	return derived == secret
}
