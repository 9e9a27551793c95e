// internal/store/errors.go
//
// Sentinel errors returned by store operations. Callers match them with
// errors.Is; the HTTP layer maps them onto status codes.

package store

import "errors"

var (
	// ErrGameNotFound means the game id does not exist for the requesting
	// owner. Holding a stale id is a caller bug; it is surfaced, never
	// swallowed.
	ErrGameNotFound = errors.New("game not found")

	// ErrGameInProgress is returned by CreateGame when the owner already
	// has an open game. Reset instead of creating.
	ErrGameInProgress = errors.New("game already in progress")

	// ErrGameNotInProgress covers both "no open game exists" and "the
	// addressed game is already terminal". Either way the caller must
	// reset before guessing again.
	ErrGameNotInProgress = errors.New("game not in progress")

	ErrChallengeNotFound   = errors.New("daily challenge not found")
	ErrChallengeNotStarted = errors.New("daily challenge not started")
	ErrChallengeFinished   = errors.New("daily challenge already finished")
	ErrChallengeExpired    = errors.New("daily challenge expired")

	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")

	ErrInvalidDigit = errors.New("digit out of range")
	ErrInvalidMark  = errors.New("unknown mark")

	// ErrStoreClosed is returned for operations submitted after Close.
	// Operations enqueued before Close still run to completion.
	ErrStoreClosed = errors.New("store closed")
)
