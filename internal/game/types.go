// internal/game/types.go
//
// Core type definitions for the digit-guessing game engine.
// Defines:
//   - Feedback: result of evaluating one guess (good/fair counts, poor flag).
//   - GameState: lifecycle of a classic game (in_progress/won/abandoned).
//   - ChallengeState: lifecycle of a daily challenge.
//   - Mark: player-maintained annotation for a single digit 0-9.
//   - Mode/Modes: per-mode configuration (secret length, attempt cap).

package game

// Feedback is the evaluation result for a single guess.
//   - Good:   digits in the exact same position as in the secret.
//   - Fair:   digits present in the secret but at a different position.
//   - IsPoor: true when no guessed digit appears in the secret at all.
type Feedback struct {
	Good   int  `json:"good"`
	Fair   int  `json:"fair"`
	IsPoor bool `json:"isPoor"`
}

// GameState tracks a classic game's lifecycle.
// A fresh game always starts in_progress; won and abandoned are terminal.
type GameState string

const (
	StateInProgress GameState = "in_progress"
	StateWon        GameState = "won"
	StateAbandoned  GameState = "abandoned"
)

// Terminal reports whether no further transition may leave s.
func (s GameState) Terminal() bool {
	return s == StateWon || s == StateAbandoned
}

// ChallengeState tracks a daily challenge's lifecycle.
// not_started → in_progress on the first guess; completed and failed are terminal.
type ChallengeState string

const (
	ChallengeNotStarted ChallengeState = "not_started"
	ChallengeInProgress ChallengeState = "in_progress"
	ChallengeCompleted  ChallengeState = "completed"
	ChallengeFailed     ChallengeState = "failed"
)

// Terminal reports whether the challenge accepts no further guesses.
func (s ChallengeState) Terminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed
}

// Mark is a player-authored hypothesis about one digit. It never feeds back
// into evaluation and is never derived from attempts automatically.
type Mark string

const (
	MarkUnknown Mark = "unknown"
	MarkPoor    Mark = "poor"
	MarkFair    Mark = "fair"
	MarkGood    Mark = "good"
)

// Next returns the mark that follows m in the toggle cycle
// unknown → poor → fair → good → unknown. Total: any unrecognized
// value wraps to unknown, so four applications always close the cycle.
func (m Mark) Next() Mark {
	switch m {
	case MarkUnknown:
		return MarkPoor
	case MarkPoor:
		return MarkFair
	case MarkFair:
		return MarkGood
	default:
		return MarkUnknown
	}
}

// ParseMark maps a string onto a Mark, reporting whether it named one.
func ParseMark(s string) (Mark, bool) {
	switch Mark(s) {
	case MarkUnknown, MarkPoor, MarkFair, MarkGood:
		return Mark(s), true
	}
	return MarkUnknown, false
}

// Mode configures one play mode. AttemptCap of zero means unlimited.
type Mode struct {
	Length     int
	AttemptCap int
}

// Modes bundles the two play modes. The classic and daily modes do not
// share a length; each is configured independently.
type Modes struct {
	Classic Mode
	Daily   Mode
}

// Default mode dimensions. The daily board is shorter but capped.
const (
	DefaultSecretLength      = 5
	DefaultDailySecretLength = 3
	DefaultDailyAttemptCap   = 10
)

// DefaultModes returns the standard mode configuration.
func DefaultModes() Modes {
	return Modes{
		Classic: Mode{Length: DefaultSecretLength},
		Daily:   Mode{Length: DefaultDailySecretLength, AttemptCap: DefaultDailyAttemptCap},
	}
}
