package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

// fakeClock is a settable clock shared between a test and its store.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testConfig pins the secret and the clock so games are predictable.
func testConfig(secret string, clk *fakeClock) Config {
	return Config{
		Modes: game.Modes{
			Classic: game.Mode{Length: len(secret)},
			Daily:   game.Mode{Length: 3, AttemptCap: 10},
		},
		NewSecret: func(int) string { return secret },
		Now:       clk.Now,
	}
}

func openTestStore(t *testing.T, cfg Config) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

// execRaw runs a statement through a second connection, the only way a
// test can corrupt state behind the actor's back.
func execRaw(t *testing.T, path, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(query, args...)
	require.NoError(t, err)
}

func TestOpenAppliesMigrationsIdempotently(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), "data", "app.db")

	s, err := Open(path, testConfig("01234", clk))
	require.NoError(t, err)
	id, err := s.CreateGame(context.Background(), "owner-1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening must skip applied migrations and keep existing rows.
	s, err = Open(path, testConfig("01234", clk))
	require.NoError(t, err)
	defer s.Close()

	detail, err := s.GameDetail(context.Background(), "owner-1", id)
	require.NoError(t, err)
	assert.Equal(t, id, detail.ID)
	assert.Equal(t, game.StateInProgress, detail.State)
}

func TestCloseRejectsNewOps(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close must be a no-op")

	_, err := s.CreateGame(context.Background(), "owner-1")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestDoRespectsContext(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.CreateGame(ctx, "owner-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpsSerializeUnderConcurrency(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	// Hammer the same game from many goroutines. Every attempt must land;
	// none may be lost to interleaving.
	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fb := game.Evaluate("01234", "56789")
			_, err := s.RecordAttempt(ctx, "owner-1", detail.ID, "56789", fb)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attempts, workers)
}

func TestConcurrentResetsLeaveOneOpenGame(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ResetGame(ctx, "owner-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Exactly one game survives in progress no matter how the resets
	// interleaved.
	cur, err := s.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.NotEmpty(t, cur.ID)

	sums, err := s.GameSummaries(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, sums, workers-1)
	for _, sum := range sums {
		assert.Equal(t, game.StateAbandoned, sum.State)
		assert.NotNil(t, sum.FinishedAt)
	}
}

func TestCloseWithInflightOps(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testConfig("01234", clk))
	require.NoError(t, err)
	ctx := context.Background()

	// Race Close against a burst of resets. Each submission must either
	// run to completion or be rejected outright; nothing in between.
	var wg sync.WaitGroup
	results := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.ResetGame(ctx, "owner-1")
		}(i)
	}
	require.NoError(t, s.Close())
	wg.Wait()

	for _, err := range results {
		if errors.Is(err, ErrStoreClosed) {
			continue
		}
		assert.NoError(t, err, "an accepted op must run to completion")
	}

	// The file reopens consistent regardless of where Close landed.
	s2, err := Open(path, testConfig("01234", clk))
	require.NoError(t, err)
	defer s2.Close()
	if _, err := s2.Current(ctx, "owner-1"); err != nil {
		assert.ErrorIs(t, err, ErrGameNotInProgress)
	}
}
