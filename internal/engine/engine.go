// internal/engine/engine.go
//
// The orchestrator between the pure rules and the persistence actor.
// Responsibilities:
//   - submit guess: validate → evaluate against the open game's secret →
//     record the attempt → mark won on a full match.
//   - resolve "the current game" for the note operations, which are
//     always scoped to the owner's open game.
//   - gate the daily secret behind an explicit reveal request.
//
// Validation and evaluation run on the caller's goroutine; only the
// durable writes go through the actor. The engine holds no state of its
// own beyond the mode configuration, so it is safe for concurrent use.

package engine

import (
	"context"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/store"
)

// Engine exposes the game operations the HTTP layer calls. All methods
// are scoped to an owner id (a user id or an anonymous cookie id).
type Engine struct {
	store *store.Store
	modes game.Modes
}

// New builds an engine on top of an open store, adopting its modes.
func New(st *store.Store) *Engine {
	return &Engine{store: st, modes: st.Modes()}
}

// GuessResult is what a submitted classic guess returns.
type GuessResult struct {
	Guess string `json:"guess"`
	game.Feedback
	IsRepeated bool           `json:"isRepeated"`
	State      game.GameState `json:"gameState"`
}

/* ------------------------------ classic game ----------------------------- */

// CurrentGame returns the owner's open game, creating one on first
// access. The snapshot never contains the secret.
func (e *Engine) CurrentGame(ctx context.Context, ownerID string) (store.GameDetail, error) {
	return e.store.FetchOrCreateGame(ctx, ownerID)
}

// SubmitGuess plays one guess against the owner's open game. The guess
// is validated first, then evaluated against the game's secret, and the
// attempt is recorded; a full match moves the game to won. There is no
// auto-creation here: guessing without an open game is a domain error
// (store.ErrGameNotInProgress), and the caller must reset first.
func (e *Engine) SubmitGuess(ctx context.Context, ownerID, raw string) (GuessResult, error) {
	guess, err := game.Validate(raw, e.modes.Classic.Length)
	if err != nil {
		return GuessResult{}, err
	}
	cur, err := e.store.Current(ctx, ownerID)
	if err != nil {
		return GuessResult{}, err
	}

	fb := game.Evaluate(cur.Secret, guess)
	repeated, err := e.store.RecordAttempt(ctx, ownerID, cur.ID, guess, fb)
	if err != nil {
		return GuessResult{}, err
	}

	state := game.StateInProgress
	if fb.Good == e.modes.Classic.Length {
		state, err = e.store.MarkWon(ctx, ownerID, cur.ID)
		if err != nil {
			return GuessResult{}, err
		}
	}
	return GuessResult{Guess: guess, Feedback: fb, IsRepeated: repeated, State: state}, nil
}

// ResetGame abandons the owner's open game, if any, and starts a fresh
// one. The store runs both steps in a single actor turn, so callers
// never observe the in-between.
func (e *Engine) ResetGame(ctx context.Context, ownerID string) (store.GameDetail, error) {
	return e.store.ResetGame(ctx, ownerID)
}

// GameSummaries lists the owner's finished games, most recent first.
func (e *Engine) GameSummaries(ctx context.Context, ownerID string) ([]store.GameSummary, error) {
	return e.store.GameSummaries(ctx, ownerID)
}

// GameDetail returns the full snapshot of one of the owner's games.
func (e *Engine) GameDetail(ctx context.Context, ownerID, gameID string) (store.GameDetail, error) {
	return e.store.GameDetail(ctx, ownerID, gameID)
}

/* ------------------------------ digit notes ------------------------------ */

// Note operations target the open game; there is nothing to annotate
// without one.

// SetDigitMark sets the owner's note for one digit on the open game.
func (e *Engine) SetDigitMark(ctx context.Context, ownerID string, digit int, mark game.Mark) error {
	id, err := e.currentID(ctx, ownerID)
	if err != nil {
		return err
	}
	return e.store.SetDigitMark(ctx, ownerID, id, digit, mark)
}

// ToggleDigitMark advances one digit's note along the mark cycle and
// returns the mark it landed on.
func (e *Engine) ToggleDigitMark(ctx context.Context, ownerID string, digit int) (game.Mark, error) {
	id, err := e.currentID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return e.store.ToggleDigitMark(ctx, ownerID, id, digit)
}

// ResetDigitNotes clears every note on the open game back to unknown.
func (e *Engine) ResetDigitNotes(ctx context.Context, ownerID string) error {
	id, err := e.currentID(ctx, ownerID)
	if err != nil {
		return err
	}
	return e.store.ResetDigitNotes(ctx, ownerID, id)
}

func (e *Engine) currentID(ctx context.Context, ownerID string) (string, error) {
	cur, err := e.store.Current(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return cur.ID, nil
}

/* ----------------------------- daily challenge --------------------------- */

// TodayChallenge returns the owner's challenge for the current UTC day,
// creating it on first access. The secret appears only when the caller
// asked to reveal it and the challenge is completed; the store already
// withholds it in every non-completed state, so the flag can only
// narrow, never widen.
func (e *Engine) TodayChallenge(ctx context.Context, ownerID string, revealSecret bool) (store.ChallengeDetail, error) {
	d, err := e.store.TodayChallenge(ctx, ownerID)
	if err != nil {
		return store.ChallengeDetail{}, err
	}
	if !revealSecret {
		d.Secret = ""
	}
	return d, nil
}

// Challenge returns the snapshot of a past (or present) challenge
// without creating anything. Finished boards show their secret the same
// way a won game's detail does.
func (e *Engine) Challenge(ctx context.Context, ownerID, date string) (store.ChallengeDetail, error) {
	return e.store.Challenge(ctx, ownerID, date)
}

// SubmitDailyGuess plays one guess against the challenge for date, or
// today's when date is empty. Validation uses the daily mode's length,
// which is independent of the classic one.
func (e *Engine) SubmitDailyGuess(ctx context.Context, ownerID, date, raw string) (store.DailyGuessResult, error) {
	guess, err := game.Validate(raw, e.modes.Daily.Length)
	if err != nil {
		return store.DailyGuessResult{}, err
	}
	return e.store.SubmitDailyGuess(ctx, ownerID, date, guess)
}

// GiveUpChallenge fails today's challenge and reports the resulting
// state. Giving up twice is harmless; a board never touched cannot be
// given up.
func (e *Engine) GiveUpChallenge(ctx context.Context, ownerID string) (game.ChallengeState, error) {
	return e.store.FailChallenge(ctx, ownerID, "")
}

// CompletedChallenges lists the owner's solved dailies, newest first.
func (e *Engine) CompletedChallenges(ctx context.Context, ownerID string) ([]store.ChallengeSummary, error) {
	return e.store.CompletedChallenges(ctx, ownerID)
}

// DailyLeaderboard ranks completions for a date (today when empty).
func (e *Engine) DailyLeaderboard(ctx context.Context, date string, limit int) ([]store.LeaderboardRow, error) {
	return e.store.DailyLeaderboard(ctx, date, limit)
}
