// internal/store/notes.go
//
// Digit-note operations. A game always owns exactly ten notes, one per
// digit 0-9. A missing note is synthesized as unknown before any read or
// mutation touches it; every repair funnels through repairNote so it
// stays observable in the logs.

package store

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// SetDigitMark sets the mark on one digit of the owner's game.
func (s *Store) SetDigitMark(ctx context.Context, ownerID, gameID string, digit int, mark game.Mark) error {
	if digit < 0 || digit > 9 {
		return ErrInvalidDigit
	}
	if _, ok := game.ParseMark(string(mark)); !ok {
		return ErrInvalidMark
	}
	return s.do(ctx, func(tx *sql.Tx) error {
		if _, err := s.gameState(tx, ownerID, gameID); err != nil {
			return err
		}
		// Heals a missing row before the update.
		if _, err := noteMark(tx, gameID, digit); err != nil {
			return err
		}
		_, err := tx.Exec(
			`UPDATE digit_notes SET mark = ? WHERE game_id = ? AND digit = ?`,
			mark, gameID, digit,
		)
		return err
	})
}

// ToggleDigitMark advances one digit's mark along the cycle
// unknown → poor → fair → good → unknown and returns the new mark. The
// read-modify-write runs in one actor turn, so concurrent toggles can
// never skip or repeat a step.
func (s *Store) ToggleDigitMark(ctx context.Context, ownerID, gameID string, digit int) (game.Mark, error) {
	if digit < 0 || digit > 9 {
		return "", ErrInvalidDigit
	}
	var next game.Mark
	err := s.do(ctx, func(tx *sql.Tx) error {
		if _, err := s.gameState(tx, ownerID, gameID); err != nil {
			return err
		}
		cur, err := noteMark(tx, gameID, digit)
		if err != nil {
			return err
		}
		next = cur.Next()
		_, err = tx.Exec(
			`UPDATE digit_notes SET mark = ? WHERE game_id = ? AND digit = ?`,
			next, gameID, digit,
		)
		return err
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// ResetDigitNotes returns all ten notes of a game to unknown, repairing
// any gaps on the way.
func (s *Store) ResetDigitNotes(ctx context.Context, ownerID, gameID string) error {
	return s.do(ctx, func(tx *sql.Tx) error {
		if _, err := s.gameState(tx, ownerID, gameID); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`UPDATE digit_notes SET mark = ? WHERE game_id = ?`,
			game.MarkUnknown, gameID,
		); err != nil {
			return err
		}
		_, err := s.notesFor(tx, gameID)
		return err
	})
}

// repairNote synthesizes a missing digit note as unknown.
func repairNote(tx *sql.Tx, gameID string, digit int) error {
	log.Warn().Str("game", gameID).Int("digit", digit).
		Msg("digit note missing, synthesizing as unknown")
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO digit_notes (game_id, digit, mark) VALUES (?, ?, ?)`,
		gameID, digit, game.MarkUnknown,
	)
	return err
}

// noteMark reads one digit's current mark, healing a missing row to
// unknown first. An unreadable mark value is treated as unknown; the
// next mutation overwrites it anyway.
func noteMark(tx *sql.Tx, gameID string, digit int) (game.Mark, error) {
	var raw string
	err := tx.QueryRow(
		`SELECT mark FROM digit_notes WHERE game_id = ? AND digit = ?`,
		gameID, digit,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		if err := repairNote(tx, gameID, digit); err != nil {
			return "", err
		}
		return game.MarkUnknown, nil
	}
	if err != nil {
		return "", err
	}
	mark, ok := game.ParseMark(raw)
	if !ok {
		mark = game.MarkUnknown
	}
	return mark, nil
}

// notesFor returns the game's ten notes sorted by digit, repairing any
// gaps so the ten-notes invariant holds on every snapshot.
func (s *Store) notesFor(tx *sql.Tx, gameID string) ([10]DigitNote, error) {
	var (
		notes [10]DigitNote
		seen  [10]bool
	)
	rows, err := tx.Query(
		`SELECT digit, mark FROM digit_notes WHERE game_id = ? ORDER BY digit ASC`,
		gameID,
	)
	if err != nil {
		return notes, err
	}
	for rows.Next() {
		var (
			digit int
			raw   string
		)
		if err := rows.Scan(&digit, &raw); err != nil {
			rows.Close()
			return notes, err
		}
		if digit < 0 || digit > 9 || seen[digit] {
			continue
		}
		mark, ok := game.ParseMark(raw)
		if !ok {
			mark = game.MarkUnknown
		}
		notes[digit] = DigitNote{Digit: digit, Mark: mark}
		seen[digit] = true
	}
	if err := rows.Err(); err != nil {
		return notes, err
	}
	// rows is exhausted and closed here; the tx connection is free again.
	for digit := range notes {
		if seen[digit] {
			continue
		}
		if err := repairNote(tx, gameID, digit); err != nil {
			return notes, err
		}
		notes[digit] = DigitNote{Digit: digit, Mark: game.MarkUnknown}
	}
	return notes, nil
}
