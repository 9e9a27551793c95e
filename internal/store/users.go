// internal/store/users.go
//
// Account rows, the stats counters, and the anonymous-to-account claim.
// Password hashing happens in the HTTP layer; the store only ever sees
// the bcrypt hash.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// CreateUser inserts a new account, failing with ErrUsernameTaken when
// the name is already claimed (usernames compare case-insensitively).
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	var u User
	err := s.do(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM users WHERE username = ?`, username).Scan(&exists)
		if err == nil {
			return ErrUsernameTaken
		}
		if err != sql.ErrNoRows {
			return err
		}
		u = User{
			ID:        uuid.NewString(),
			Username:  username,
			CreatedAt: s.now().UTC(),
		}
		_, err = tx.Exec(
			`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			u.ID, username, passwordHash, fmtTime(u.CreatedAt),
		)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByUsername fetches an account for login; the returned User carries
// the stored hash for verification.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.fetchUser(ctx, `SELECT id, username, password_hash, games_played, wins, streak, created_at
		FROM users WHERE username = ?`, username)
}

// UserByID fetches an account by id.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.fetchUser(ctx, `SELECT id, username, password_hash, games_played, wins, streak, created_at
		FROM users WHERE id = ?`, id)
}

func (s *Store) fetchUser(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := s.do(ctx, func(tx *sql.Tx) error {
		var created string
		err := tx.QueryRow(query, arg).Scan(
			&u.ID, &u.Username, &u.PasswordHash, &u.GamesPlayed, &u.Wins, &u.Streak, &created,
		)
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		u.CreatedAt = parseTime(created)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UserStats returns the classic-game counters for one account.
func (s *Store) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var st UserStats
	err := s.do(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRow(
			`SELECT games_played, wins, streak FROM users WHERE id = ?`,
			userID,
		).Scan(&st.GamesPlayed, &st.Wins, &st.Streak)
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		return err
	})
	if err != nil {
		return UserStats{}, err
	}
	return st, nil
}

// ClaimOwner moves every game and challenge from one owner id to
// another, the signup/login hand-off that folds an anonymous session
// into an account. Two rules keep the invariants intact:
//   - If both owners hold an open game, the anonymous one is abandoned.
//     Its stats are not counted; it was never the account's loss.
//   - Where both owners hold a challenge row for the same date, the
//     account's row wins and the anonymous duplicate is dropped.
func (s *Store) ClaimOwner(ctx context.Context, fromOwnerID, toOwnerID string) error {
	if fromOwnerID == "" || fromOwnerID == toOwnerID {
		return nil
	}
	return s.do(ctx, func(tx *sql.Tx) error {
		anonOpen, err := s.openGameID(tx, fromOwnerID)
		switch {
		case err == nil:
			if _, err := s.openGameID(tx, toOwnerID); err == nil {
				if _, err := tx.Exec(
					`UPDATE games SET state = ?, finished_at = ? WHERE id = ?`,
					game.StateAbandoned, fmtTime(s.now()), anonOpen,
				); err != nil {
					return err
				}
			} else if !errors.Is(err, ErrGameNotInProgress) {
				return err
			}
		case !errors.Is(err, ErrGameNotInProgress):
			return err
		}

		if _, err := tx.Exec(
			`UPDATE games SET owner_id = ? WHERE owner_id = ?`,
			toOwnerID, fromOwnerID,
		); err != nil {
			return err
		}
		// Drop anonymous rows for dates the account already played, then
		// move the rest.
		if _, err := tx.Exec(
			`DELETE FROM daily_attempts WHERE owner_id = ?
			   AND date IN (SELECT date FROM daily_challenges WHERE owner_id = ?)`,
			fromOwnerID, toOwnerID,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`DELETE FROM daily_challenges WHERE owner_id = ?
			   AND date IN (SELECT date FROM daily_challenges WHERE owner_id = ?)`,
			fromOwnerID, toOwnerID,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`UPDATE daily_attempts SET owner_id = ? WHERE owner_id = ?`,
			toOwnerID, fromOwnerID,
		); err != nil {
			return err
		}
		_, err = tx.Exec(
			`UPDATE daily_challenges SET owner_id = ? WHERE owner_id = ?`,
			toOwnerID, fromOwnerID,
		)
		return err
	})
}

// bumpStats updates a registered owner's counters after a finished game.
// Anonymous owners have no users row, so the update simply misses.
func bumpStats(tx *sql.Tx, ownerID string, won bool) error {
	if won {
		_, err := tx.Exec(
			`UPDATE users SET games_played = games_played + 1, wins = wins + 1, streak = streak + 1 WHERE id = ?`,
			ownerID,
		)
		return err
	}
	_, err := tx.Exec(
		`UPDATE users SET games_played = games_played + 1, streak = 0 WHERE id = ?`,
		ownerID,
	)
	return err
}
