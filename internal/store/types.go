// internal/store/types.go
//
// Immutable snapshot types returned by store operations. Snapshots never
// expose the live aggregate, and a secret appears only once the relevant
// terminal state makes it safe to show.

package store

import (
	"database/sql"
	"time"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// GameSummary is one row of the finished-games list.
type GameSummary struct {
	ID            string         `json:"id"`
	State         game.GameState `json:"state"`
	CreatedAt     time.Time      `json:"createdAt"`
	FinishedAt    *time.Time     `json:"finishedAt,omitempty"`
	AttemptsCount int            `json:"attemptsCount"`
}

// Attempt is a recorded guess with its feedback, immutable once written.
type Attempt struct {
	Guess string `json:"guess"`
	game.Feedback
	IsRepeated bool      `json:"isRepeated"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DigitNote pairs a digit with its player-authored mark.
type DigitNote struct {
	Digit int       `json:"digit"`
	Mark  game.Mark `json:"mark"`
}

// GameDetail is the full snapshot of one game. DigitNotes is a fixed
// ten-slot array indexed by digit, which makes the always-ten invariant
// part of the type rather than a runtime check. Secret is set only when
// the game is won.
type GameDetail struct {
	ID         string         `json:"id"`
	State      game.GameState `json:"state"`
	CreatedAt  time.Time      `json:"createdAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
	Secret     string         `json:"secret,omitempty"`
	Attempts   []Attempt      `json:"attempts"`
	DigitNotes [10]DigitNote  `json:"digitNotes"`
}

// Current is the orchestrator's working view of the open game. It
// carries the raw secret and must never be serialized to a client.
type Current struct {
	ID     string
	Secret string
}

// ChallengeSummary is one row of the solved-challenges list.
type ChallengeSummary struct {
	Date          string              `json:"date"`
	State         game.ChallengeState `json:"state"`
	AttemptsCount int                 `json:"attemptsCount"`
	StartedAt     *time.Time          `json:"startedAt,omitempty"`
	CompletedAt   *time.Time          `json:"completedAt,omitempty"`
}

// ChallengeDetail is the full snapshot of one daily challenge. Secret is
// set only when the challenge is completed.
type ChallengeDetail struct {
	Date          string              `json:"date"`
	Secret        string              `json:"secret,omitempty"`
	State         game.ChallengeState `json:"state"`
	Attempts      []Attempt           `json:"attempts"`
	AttemptsCount int                 `json:"attemptsCount"`
	AttemptCap    int                 `json:"attemptCap"`
	IsToday       bool                `json:"isToday"`
	IsExpired     bool                `json:"isExpired"`
	StartedAt     *time.Time          `json:"startedAt,omitempty"`
	CompletedAt   *time.Time          `json:"completedAt,omitempty"`
}

// DailyGuessResult is what a submitted daily guess returns: the feedback
// plus where the challenge now stands.
type DailyGuessResult struct {
	Guess string `json:"guess"`
	game.Feedback
	State         game.ChallengeState `json:"state"`
	AttemptsCount int                 `json:"attemptsCount"`
	AttemptsLeft  int                 `json:"attemptsLeft"`
}

// LeaderboardRow ranks one completed challenge for a date.
type LeaderboardRow struct {
	Username    string    `json:"username"`
	Attempts    int       `json:"attempts"`
	CompletedAt time.Time `json:"completedAt"`
}

// User is an account row. The hash stays server-side.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserStats are the classic-game counters shown on a profile.
type UserStats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"`
}

// Timestamps persist as RFC 3339 UTC text, so lexical order matches
// chronological order; rowid breaks same-second ties.

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
