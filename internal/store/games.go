// internal/store/games.go
//
// Classic-game operations: create, fetch-or-create, attempt recording,
// terminal transitions, reset, and the read-only snapshots.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// CreateGame generates a secret and persists a fresh in-progress game
// with ten unknown digit notes, returning its id. Fails with
// ErrGameInProgress if the owner already has an open game; reset covers
// that path.
func (s *Store) CreateGame(ctx context.Context, ownerID string) (string, error) {
	var id string
	err := s.do(ctx, func(tx *sql.Tx) error {
		if _, err := s.openGameID(tx, ownerID); err == nil {
			return ErrGameInProgress
		} else if !errors.Is(err, ErrGameNotInProgress) {
			return err
		}
		var err error
		id, err = s.createGame(tx, ownerID)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// FetchOrCreateGame returns the owner's in-progress game, creating one
// first if none exists. The snapshot never carries the secret; an open
// game is by definition not won.
func (s *Store) FetchOrCreateGame(ctx context.Context, ownerID string) (GameDetail, error) {
	var out GameDetail
	err := s.do(ctx, func(tx *sql.Tx) error {
		id, err := s.openGameID(tx, ownerID)
		if errors.Is(err, ErrGameNotInProgress) {
			id, err = s.createGame(tx, ownerID)
		}
		if err != nil {
			return err
		}
		out, err = s.gameDetail(tx, ownerID, id)
		return err
	})
	if err != nil {
		return GameDetail{}, err
	}
	return out, nil
}

// Current returns the id and raw secret of the owner's in-progress game
// for the orchestrator's evaluate step. It never leaves the engine.
func (s *Store) Current(ctx context.Context, ownerID string) (Current, error) {
	var cur Current
	err := s.do(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRow(
			`SELECT id, secret FROM games WHERE owner_id = ? AND state = ?`,
			ownerID, game.StateInProgress,
		).Scan(&cur.ID, &cur.Secret)
		if err == sql.ErrNoRows {
			return ErrGameNotInProgress
		}
		return err
	})
	if err != nil {
		return Current{}, err
	}
	return cur, nil
}

// RecordAttempt appends a validated, evaluated attempt to an open game
// and reports whether the same guess was played on it before. The game
// must exist for this owner and still be in progress; a terminal game is
// never mutated.
func (s *Store) RecordAttempt(ctx context.Context, ownerID, gameID, guess string, fb game.Feedback) (bool, error) {
	var repeated bool
	err := s.do(ctx, func(tx *sql.Tx) error {
		state, err := s.gameState(tx, ownerID, gameID)
		if err != nil {
			return err
		}
		if state != game.StateInProgress {
			return ErrGameNotInProgress
		}

		var prior int
		if err := tx.QueryRow(
			`SELECT COUNT(1) FROM attempts WHERE game_id = ? AND guess = ?`,
			gameID, guess,
		).Scan(&prior); err != nil {
			return err
		}
		repeated = prior > 0

		_, err = tx.Exec(
			`INSERT INTO attempts (game_id, guess, good, fair, is_poor, is_repeated, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			gameID, guess, fb.Good, fb.Fair, fb.IsPoor, repeated, fmtTime(s.now()),
		)
		return err
	})
	if err != nil {
		return false, err
	}
	return repeated, nil
}

// MarkWon moves an open game to won and stamps finished_at. Calling it
// on an already-terminal game is a no-op that reports the existing
// state; stats are bumped only on an actual transition.
func (s *Store) MarkWon(ctx context.Context, ownerID, gameID string) (game.GameState, error) {
	return s.finishGame(ctx, ownerID, gameID, game.StateWon)
}

// MarkAbandoned moves an open game to abandoned. Idempotent like MarkWon.
func (s *Store) MarkAbandoned(ctx context.Context, ownerID, gameID string) (game.GameState, error) {
	return s.finishGame(ctx, ownerID, gameID, game.StateAbandoned)
}

func (s *Store) finishGame(ctx context.Context, ownerID, gameID string, to game.GameState) (game.GameState, error) {
	var state game.GameState
	err := s.do(ctx, func(tx *sql.Tx) error {
		var err error
		state, err = s.finish(tx, ownerID, gameID, to)
		return err
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// finish is the shared terminal transition; ResetGame reuses it inside
// its single turn.
func (s *Store) finish(tx *sql.Tx, ownerID, gameID string, to game.GameState) (game.GameState, error) {
	state, err := s.gameState(tx, ownerID, gameID)
	if err != nil {
		return "", err
	}
	if state.Terminal() {
		return state, nil
	}
	if _, err := tx.Exec(
		`UPDATE games SET state = ?, finished_at = ? WHERE id = ?`,
		to, fmtTime(s.now()), gameID,
	); err != nil {
		return "", err
	}
	if err := bumpStats(tx, ownerID, to == game.StateWon); err != nil {
		return "", err
	}
	return to, nil
}

// ResetGame abandons the owner's open game (if any) and creates a fresh
// one as a single actor turn, so callers never observe the state in
// between. Returns the new game's snapshot.
func (s *Store) ResetGame(ctx context.Context, ownerID string) (GameDetail, error) {
	var out GameDetail
	err := s.do(ctx, func(tx *sql.Tx) error {
		if id, err := s.openGameID(tx, ownerID); err == nil {
			if _, err := s.finish(tx, ownerID, id, game.StateAbandoned); err != nil {
				return err
			}
		} else if !errors.Is(err, ErrGameNotInProgress) {
			return err
		}
		id, err := s.createGame(tx, ownerID)
		if err != nil {
			return err
		}
		out, err = s.gameDetail(tx, ownerID, id)
		return err
	})
	if err != nil {
		return GameDetail{}, err
	}
	return out, nil
}

// GameSummaries lists the owner's finished games, most recently finished
// first. In-progress games are excluded; their place is the live board.
func (s *Store) GameSummaries(ctx context.Context, ownerID string) ([]GameSummary, error) {
	out := make([]GameSummary, 0, 16)
	err := s.do(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(
			`SELECT g.id, g.state, g.created_at, g.finished_at,
			        (SELECT COUNT(1) FROM attempts a WHERE a.game_id = g.id)
			 FROM games g
			 WHERE g.owner_id = ? AND g.state != ?
			 ORDER BY COALESCE(g.finished_at, g.created_at) DESC, g.rowid DESC`,
			ownerID, game.StateInProgress,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				sum      GameSummary
				created  string
				finished sql.NullString
			)
			if err := rows.Scan(&sum.ID, &sum.State, &created, &finished, &sum.AttemptsCount); err != nil {
				return err
			}
			sum.CreatedAt = parseTime(created)
			sum.FinishedAt = parseNullTime(finished)
			out = append(out, sum)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GameDetail returns the full snapshot of one of the owner's games.
func (s *Store) GameDetail(ctx context.Context, ownerID, gameID string) (GameDetail, error) {
	var out GameDetail
	err := s.do(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = s.gameDetail(tx, ownerID, gameID)
		return err
	})
	if err != nil {
		return GameDetail{}, err
	}
	return out, nil
}

/* --------------------------- tx-level helpers --------------------------- */

// createGame inserts a fresh game plus its ten unknown digit notes.
func (s *Store) createGame(tx *sql.Tx, ownerID string) (string, error) {
	id := uuid.NewString()
	secret := s.cfg.NewSecret(s.cfg.Modes.Classic.Length)
	if _, err := tx.Exec(
		`INSERT INTO games (id, owner_id, secret, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, ownerID, secret, game.StateInProgress, fmtTime(s.now()),
	); err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	for digit := 0; digit < 10; digit++ {
		if _, err := tx.Exec(
			`INSERT INTO digit_notes (game_id, digit, mark) VALUES (?, ?, ?)`,
			id, digit, game.MarkUnknown,
		); err != nil {
			return "", fmt.Errorf("insert digit note: %w", err)
		}
	}
	return id, nil
}

// openGameID finds the owner's in-progress game.
func (s *Store) openGameID(tx *sql.Tx, ownerID string) (string, error) {
	var id string
	err := tx.QueryRow(
		`SELECT id FROM games WHERE owner_id = ? AND state = ?`,
		ownerID, game.StateInProgress,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrGameNotInProgress
	}
	return id, err
}

func (s *Store) gameState(tx *sql.Tx, ownerID, gameID string) (game.GameState, error) {
	var state game.GameState
	err := tx.QueryRow(
		`SELECT state FROM games WHERE id = ? AND owner_id = ?`,
		gameID, ownerID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return "", ErrGameNotFound
	}
	return state, err
}

// gameDetail assembles the immutable snapshot for one game. The secret
// is included only once the game is won.
func (s *Store) gameDetail(tx *sql.Tx, ownerID, gameID string) (GameDetail, error) {
	var (
		d        GameDetail
		secret   string
		created  string
		finished sql.NullString
	)
	err := tx.QueryRow(
		`SELECT id, state, secret, created_at, finished_at FROM games WHERE id = ? AND owner_id = ?`,
		gameID, ownerID,
	).Scan(&d.ID, &d.State, &secret, &created, &finished)
	if err == sql.ErrNoRows {
		return GameDetail{}, ErrGameNotFound
	}
	if err != nil {
		return GameDetail{}, err
	}
	d.CreatedAt = parseTime(created)
	d.FinishedAt = parseNullTime(finished)
	if d.State == game.StateWon {
		d.Secret = secret
	}

	if d.Attempts, err = s.attemptsFor(tx, gameID); err != nil {
		return GameDetail{}, err
	}
	if d.DigitNotes, err = s.notesFor(tx, gameID); err != nil {
		return GameDetail{}, err
	}
	return d, nil
}

func (s *Store) attemptsFor(tx *sql.Tx, gameID string) ([]Attempt, error) {
	rows, err := tx.Query(
		`SELECT guess, good, fair, is_poor, is_repeated, created_at
		 FROM attempts WHERE game_id = ? ORDER BY id ASC`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Attempt, 0, 8)
	for rows.Next() {
		var (
			a       Attempt
			created string
		)
		if err := rows.Scan(&a.Guess, &a.Good, &a.Fair, &a.IsPoor, &a.IsRepeated, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = parseTime(created)
		out = append(out, a)
	}
	return out, rows.Err()
}
