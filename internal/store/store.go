// internal/store/store.go
//
// The single-writer persistence actor. One goroutine owns the only
// *sql.DB handle; every mutation and every consistency-sensitive read is
// a closure sent through the mailbox and executed strictly one at a
// time, each inside its own transaction. That serializes all durable
// state changes without locks around the aggregates themselves.
//
// Contract:
//   - ctx guards the enqueue and the wait, never the execution. Once an
//     op is enqueued it always runs to completion; in-flight writes are
//     not abortable.
//   - Reply channels are buffered, so a caller that stops waiting never
//     blocks the actor.
//   - Results captured by an op closure are read only after a successful
//     reply. An abandoned op may keep running without a data race
//     because its caller returns zero values instead.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

const mailboxDepth = 64

// Config carries the knobs an opened store needs. Zero fields fall back
// to production defaults.
type Config struct {
	// Modes sets the per-mode secret lengths and the daily attempt cap.
	Modes game.Modes
	// NewSecret generates a fresh classic-game secret. Defaults to
	// game.RandomSecret; tests inject a fixed generator.
	NewSecret func(length int) string
	// Now is the clock. Defaults to time.Now; tests inject a fixed one.
	Now func() time.Time
}

// withDefaults fills unset fields. A zero daily attempt cap takes the
// default cap; the classic mode is always uncapped.
func (c Config) withDefaults() Config {
	if c.Modes.Classic.Length <= 0 {
		c.Modes.Classic.Length = game.DefaultSecretLength
	}
	if c.Modes.Daily.Length <= 0 {
		c.Modes.Daily.Length = game.DefaultDailySecretLength
	}
	if c.Modes.Daily.AttemptCap <= 0 {
		c.Modes.Daily.AttemptCap = game.DefaultDailyAttemptCap
	}
	if c.NewSecret == nil {
		c.NewSecret = game.RandomSecret
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type op struct {
	fn    func(*sql.Tx) error
	reply chan error
}

// Store is the persistence actor. Obtain one with Open; every method is
// safe for concurrent use from any number of goroutines.
type Store struct {
	db  *sql.DB
	cfg Config

	mailbox chan op

	mu     sync.RWMutex // guards closed and the right to send on mailbox
	closed bool

	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newStore(db *sql.DB, cfg Config) *Store {
	s := &Store{
		db:      db,
		cfg:     cfg.withDefaults(),
		mailbox: make(chan op, mailboxDepth),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// Modes reports the mode configuration the store was opened with.
func (s *Store) Modes() game.Modes {
	return s.cfg.Modes
}

// run is the actor loop. It drains the mailbox in FIFO order until the
// mailbox is closed, then signals stopped.
func (s *Store) run() {
	defer close(s.stopped)
	for o := range s.mailbox {
		o.reply <- s.exec(o.fn)
	}
}

// exec runs one op inside its own transaction, so each logical
// operation commits atomically or not at all.
func (s *Store) exec(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// do submits fn to the actor and waits for its reply.
func (s *Store) do(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := op{fn: fn, reply: make(chan error, 1)}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	select {
	case s.mailbox <- o:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-o.reply:
		return err
	case <-ctx.Done():
		// The op still runs; only the result is discarded.
		return ctx.Err()
	}
}

// Close rejects new operations, waits for every enqueued op to finish,
// and then closes the database handle. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		// No sender can be mid-send now: sends happen under the read
		// lock, which Close just barred.
		close(s.mailbox)
		<-s.stopped
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *Store) now() time.Time {
	return s.cfg.Now()
}
