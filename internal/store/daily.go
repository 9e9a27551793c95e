// internal/store/daily.go
//
// Daily-challenge operations. Challenge rows are keyed (owner, date);
// the secret and seed for a date are identical across owners because
// both derive deterministically from the UTC day itself, which is what
// makes the challenge shared without any coordination.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/daily"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// TodayChallenge returns the owner's challenge for the current UTC day,
// creating it on first access.
func (s *Store) TodayChallenge(ctx context.Context, ownerID string) (ChallengeDetail, error) {
	var out ChallengeDetail
	err := s.do(ctx, func(tx *sql.Tx) error {
		row, err := s.ensureToday(tx, ownerID)
		if err != nil {
			return err
		}
		out, err = s.challengeDetail(tx, row)
		return err
	})
	if err != nil {
		return ChallengeDetail{}, err
	}
	return out, nil
}

// Challenge returns the snapshot of the owner's challenge for an
// arbitrary date without creating anything. Past days that were left
// unfinished show up with IsExpired set.
func (s *Store) Challenge(ctx context.Context, ownerID, date string) (ChallengeDetail, error) {
	var out ChallengeDetail
	err := s.do(ctx, func(tx *sql.Tx) error {
		row, err := s.challengeRow(tx, ownerID, date)
		if err != nil {
			return err
		}
		out, err = s.challengeDetail(tx, row)
		return err
	})
	if err != nil {
		return ChallengeDetail{}, err
	}
	return out, nil
}

// SubmitDailyGuess records one validated guess against the owner's
// challenge for date (today when empty) and applies any transition: a
// first guess starts the challenge, a full match completes it, and
// exhausting the attempt cap fails it. Everything happens in one actor
// turn, so no partial transition is ever observable.
func (s *Store) SubmitDailyGuess(ctx context.Context, ownerID, date, guess string) (DailyGuessResult, error) {
	var out DailyGuessResult
	err := s.do(ctx, func(tx *sql.Tx) error {
		today := daily.DateKey(s.now())
		if date == "" {
			date = today
		}
		if _, err := daily.ParseDateKey(date); err != nil {
			return ErrChallengeNotFound
		}

		var (
			row challengeRow
			err error
		)
		if date == today {
			row, err = s.ensureToday(tx, ownerID)
		} else {
			row, err = s.challengeRow(tx, ownerID, date)
		}
		if err != nil {
			return err
		}
		if row.state.Terminal() {
			return ErrChallengeFinished
		}
		if row.date < today {
			return ErrChallengeExpired
		}

		fb := game.Evaluate(row.secret, guess)

		var prior int
		if err := tx.QueryRow(
			`SELECT COUNT(1) FROM daily_attempts WHERE owner_id = ? AND date = ? AND guess = ?`,
			ownerID, date, guess,
		).Scan(&prior); err != nil {
			return err
		}
		now := fmtTime(s.now())
		if _, err := tx.Exec(
			`INSERT INTO daily_attempts (owner_id, date, guess, good, fair, is_poor, is_repeated, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ownerID, date, guess, fb.Good, fb.Fair, fb.IsPoor, prior > 0, now,
		); err != nil {
			return err
		}
		var count int
		if err := tx.QueryRow(
			`SELECT COUNT(1) FROM daily_attempts WHERE owner_id = ? AND date = ?`,
			ownerID, date,
		).Scan(&count); err != nil {
			return err
		}

		state := row.state
		started := row.startedAt
		if state == game.ChallengeNotStarted {
			state = game.ChallengeInProgress
			started = sql.NullString{String: now, Valid: true}
		}
		completed := row.completedAt
		attemptCap := s.cfg.Modes.Daily.AttemptCap
		switch {
		case fb.Good == len(row.secret):
			state = game.ChallengeCompleted
			completed = sql.NullString{String: now, Valid: true}
		case attemptCap > 0 && count >= attemptCap:
			state = game.ChallengeFailed
			completed = sql.NullString{String: now, Valid: true}
		}
		if _, err := tx.Exec(
			`UPDATE daily_challenges SET state = ?, started_at = ?, completed_at = ?
			 WHERE owner_id = ? AND date = ?`,
			state, started, completed, ownerID, date,
		); err != nil {
			return err
		}

		left := 0
		if attemptCap > 0 && !state.Terminal() {
			left = attemptCap - count
		}
		out = DailyGuessResult{
			Guess:         guess,
			Feedback:      fb,
			State:         state,
			AttemptsCount: count,
			AttemptsLeft:  left,
		}
		return nil
	})
	if err != nil {
		return DailyGuessResult{}, err
	}
	return out, nil
}

// FailChallenge marks an in-progress challenge failed, the give-up path.
// A challenge that was never started cannot be given up; one already
// terminal is left untouched and its state reported, mirroring the
// idempotent game transitions.
func (s *Store) FailChallenge(ctx context.Context, ownerID, date string) (game.ChallengeState, error) {
	var state game.ChallengeState
	err := s.do(ctx, func(tx *sql.Tx) error {
		today := daily.DateKey(s.now())
		if date == "" {
			date = today
		}
		row, err := s.challengeRow(tx, ownerID, date)
		if errors.Is(err, ErrChallengeNotFound) && date == today {
			// Today's challenge exists conceptually even before its lazy
			// row does; it just has not been started.
			return ErrChallengeNotStarted
		}
		if err != nil {
			return err
		}
		if row.state.Terminal() {
			state = row.state
			return nil
		}
		if row.state == game.ChallengeNotStarted {
			return ErrChallengeNotStarted
		}
		state = game.ChallengeFailed
		_, err = tx.Exec(
			`UPDATE daily_challenges SET state = ?, completed_at = ? WHERE owner_id = ? AND date = ?`,
			state, fmtTime(s.now()), ownerID, date,
		)
		return err
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// CompletedChallenges lists the owner's solved challenges, newest day
// first. Failed days are not part of the trophy shelf.
func (s *Store) CompletedChallenges(ctx context.Context, ownerID string) ([]ChallengeSummary, error) {
	out := make([]ChallengeSummary, 0, 16)
	err := s.do(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(
			`SELECT c.date, c.state, c.started_at, c.completed_at,
			        (SELECT COUNT(1) FROM daily_attempts a WHERE a.owner_id = c.owner_id AND a.date = c.date)
			 FROM daily_challenges c
			 WHERE c.owner_id = ? AND c.state = ?
			 ORDER BY c.date DESC`,
			ownerID, game.ChallengeCompleted,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				sum       ChallengeSummary
				started   sql.NullString
				completed sql.NullString
			)
			if err := rows.Scan(&sum.Date, &sum.State, &started, &completed, &sum.AttemptsCount); err != nil {
				return err
			}
			sum.StartedAt = parseNullTime(started)
			sum.CompletedAt = parseNullTime(completed)
			out = append(out, sum)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DailyLeaderboard ranks completed challenges for a date (today when
// empty) by attempts taken, ties broken by completion time. Registered
// players appear under their username, everyone else as "anonymous".
func (s *Store) DailyLeaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	out := make([]LeaderboardRow, 0, limit)
	err := s.do(ctx, func(tx *sql.Tx) error {
		if date == "" {
			date = daily.DateKey(s.now())
		}
		rows, err := tx.Query(
			`SELECT COALESCE(u.username, 'anonymous'),
			        (SELECT COUNT(1) FROM daily_attempts a WHERE a.owner_id = c.owner_id AND a.date = c.date) AS attempts,
			        c.completed_at
			 FROM daily_challenges c
			 LEFT JOIN users u ON u.id = c.owner_id
			 WHERE c.date = ? AND c.state = ?
			 ORDER BY attempts ASC, c.completed_at ASC
			 LIMIT ?`,
			date, game.ChallengeCompleted, limit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				r         LeaderboardRow
				completed sql.NullString
			)
			if err := rows.Scan(&r.Username, &r.Attempts, &completed); err != nil {
				return err
			}
			if t := parseNullTime(completed); t != nil {
				r.CompletedAt = *t
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* --------------------------- tx-level helpers --------------------------- */

// challengeRow is the raw persisted state, pre-snapshot.
type challengeRow struct {
	ownerID     string
	date        string
	secret      string
	seed        int64
	state       game.ChallengeState
	startedAt   sql.NullString
	completedAt sql.NullString
}

func (s *Store) challengeRow(tx *sql.Tx, ownerID, date string) (challengeRow, error) {
	var row challengeRow
	err := tx.QueryRow(
		`SELECT owner_id, date, secret, seed, state, started_at, completed_at
		 FROM daily_challenges WHERE owner_id = ? AND date = ?`,
		ownerID, date,
	).Scan(&row.ownerID, &row.date, &row.secret, &row.seed, &row.state, &row.startedAt, &row.completedAt)
	if err == sql.ErrNoRows {
		return challengeRow{}, ErrChallengeNotFound
	}
	return row, err
}

// ensureToday lazily creates today's challenge row for the owner. The
// secret and seed come from the deterministic daily derivation, so every
// owner's row for a given date carries the same pair.
func (s *Store) ensureToday(tx *sql.Tx, ownerID string) (challengeRow, error) {
	now := s.now()
	date := daily.DateKey(now)
	row, err := s.challengeRow(tx, ownerID, date)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, ErrChallengeNotFound) {
		return challengeRow{}, err
	}

	secret, seed := daily.ForDate(now, s.cfg.Modes.Daily.Length)
	if _, err := tx.Exec(
		`INSERT INTO daily_challenges (owner_id, date, secret, seed, state) VALUES (?, ?, ?, ?, ?)`,
		ownerID, date, secret, seed, game.ChallengeNotStarted,
	); err != nil {
		return challengeRow{}, err
	}
	return s.challengeRow(tx, ownerID, date)
}

func (s *Store) challengeDetail(tx *sql.Tx, row challengeRow) (ChallengeDetail, error) {
	today := daily.DateKey(s.now())
	d := ChallengeDetail{
		Date:        row.date,
		State:       row.state,
		AttemptCap:  s.cfg.Modes.Daily.AttemptCap,
		IsToday:     row.date == today,
		IsExpired:   row.date < today && !row.state.Terminal(),
		StartedAt:   parseNullTime(row.startedAt),
		CompletedAt: parseNullTime(row.completedAt),
	}
	if row.state == game.ChallengeCompleted {
		d.Secret = row.secret
	}
	attempts, err := s.dailyAttemptsFor(tx, row.ownerID, row.date)
	if err != nil {
		return ChallengeDetail{}, err
	}
	d.Attempts = attempts
	d.AttemptsCount = len(attempts)
	return d, nil
}

func (s *Store) dailyAttemptsFor(tx *sql.Tx, ownerID, date string) ([]Attempt, error) {
	rows, err := tx.Query(
		`SELECT guess, good, fair, is_poor, is_repeated, created_at
		 FROM daily_attempts WHERE owner_id = ? AND date = ? ORDER BY id ASC`,
		ownerID, date,
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
