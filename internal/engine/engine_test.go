package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/daily"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/store"
)

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

// newTestEngine opens a store with a pinned classic secret and clock and
// wraps it in an engine. Daily secrets stay on the real derivation.
func newTestEngine(t *testing.T, secret string, clk *fakeClock) *Engine {
	t.Helper()
	cfg := store.Config{
		Modes: game.Modes{
			Classic: game.Mode{Length: len(secret)},
			Daily:   game.Mode{Length: 3, AttemptCap: 10},
		},
		NewSecret: func(int) string { return secret },
		Now:       clk.Now,
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "engine.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st)
}

// missFor picks a wrong daily guess for whatever secret the day derived.
func missFor(secret string) string {
	for _, c := range []string{"012", "345", "678", "120", "453"} {
		if c != secret {
			return c
		}
	}
	return "987"
}

func TestSubmitGuessFlow(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	first, err := e.CurrentGame(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, game.StateInProgress, first.State)
	assert.Empty(t, first.Secret)

	res, err := e.SubmitGuess(ctx, "owner-1", "01243")
	require.NoError(t, err)
	assert.Equal(t, "01243", res.Guess)
	assert.Equal(t, 3, res.Good)
	assert.Equal(t, 2, res.Fair)
	assert.False(t, res.IsPoor)
	assert.False(t, res.IsRepeated)
	assert.Equal(t, game.StateInProgress, res.State)

	res, err = e.SubmitGuess(ctx, "owner-1", "01234")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Good)
	assert.Equal(t, 0, res.Fair)
	assert.Equal(t, game.StateWon, res.State)

	detail, err := e.GameDetail(ctx, "owner-1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StateWon, detail.State)
	assert.Equal(t, "01234", detail.Secret)
	assert.Len(t, detail.Attempts, 2)

	// The won game no longer accepts guesses, and nothing auto-creates.
	_, err = e.SubmitGuess(ctx, "owner-1", "56789")
	assert.ErrorIs(t, err, store.ErrGameNotInProgress)
}

func TestSubmitGuessValidatesBeforeTouchingState(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	cur, err := e.CurrentGame(ctx, "owner-1")
	require.NoError(t, err)

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"too short", "012", game.ErrWrongLength},
		{"letters", "0123x", game.ErrNotDigits},
		{"duplicate", "01223", game.ErrDuplicateDigit},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.SubmitGuess(ctx, "owner-1", tc.raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// None of the rejected guesses left an attempt behind.
	detail, err := e.GameDetail(ctx, "owner-1", cur.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Attempts)
}

func TestSubmitGuessRequiresOpenGame(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)

	_, err := e.SubmitGuess(context.Background(), "owner-1", "01234")
	assert.ErrorIs(t, err, store.ErrGameNotInProgress)
}

func TestSubmitGuessMarksRepeats(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	_, err := e.CurrentGame(ctx, "owner-1")
	require.NoError(t, err)

	res, err := e.SubmitGuess(ctx, "owner-1", "56789")
	require.NoError(t, err)
	assert.True(t, res.IsPoor)
	assert.False(t, res.IsRepeated)

	res, err = e.SubmitGuess(ctx, "owner-1", "56789")
	require.NoError(t, err)
	assert.True(t, res.IsRepeated)
}

func TestResetGameStartsFresh(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	old, err := e.CurrentGame(ctx, "owner-1")
	require.NoError(t, err)
	_, err = e.SubmitGuess(ctx, "owner-1", "01243")
	require.NoError(t, err)
	require.NoError(t, e.SetDigitMark(ctx, "owner-1", 7, game.MarkPoor))

	fresh, err := e.ResetGame(ctx, "owner-1")
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)
	assert.Equal(t, game.StateInProgress, fresh.State)
	assert.Empty(t, fresh.Attempts)
	for d, note := range fresh.DigitNotes {
		assert.Equal(t, d, note.Digit)
		assert.Equal(t, game.MarkUnknown, note.Mark)
	}

	abandoned, err := e.GameDetail(ctx, "owner-1", old.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StateAbandoned, abandoned.State)
	require.NotNil(t, abandoned.FinishedAt)
}

func TestNoteOpsFollowTheOpenGame(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	// Without an open game every note operation is a domain error.
	assert.ErrorIs(t, e.SetDigitMark(ctx, "owner-1", 3, game.MarkGood), store.ErrGameNotInProgress)
	_, err := e.ToggleDigitMark(ctx, "owner-1", 3)
	assert.ErrorIs(t, err, store.ErrGameNotInProgress)
	assert.ErrorIs(t, e.ResetDigitNotes(ctx, "owner-1"), store.ErrGameNotInProgress)

	cur, err := e.CurrentGame(ctx, "owner-1")
	require.NoError(t, err)

	require.NoError(t, e.SetDigitMark(ctx, "owner-1", 3, game.MarkGood))
	mark, err := e.ToggleDigitMark(ctx, "owner-1", 4)
	require.NoError(t, err)
	assert.Equal(t, game.MarkPoor, mark)

	detail, err := e.GameDetail(ctx, "owner-1", cur.ID)
	require.NoError(t, err)
	assert.Equal(t, game.MarkGood, detail.DigitNotes[3].Mark)
	assert.Equal(t, game.MarkPoor, detail.DigitNotes[4].Mark)

	require.NoError(t, e.ResetDigitNotes(ctx, "owner-1"))
	detail, err = e.GameDetail(ctx, "owner-1", cur.ID)
	require.NoError(t, err)
	for _, note := range detail.DigitNotes {
		assert.Equal(t, game.MarkUnknown, note.Mark)
	}
}

func TestTodayChallengeRevealGate(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()
	secret, _ := daily.ForDate(clk.Now(), 3)

	// Open board: hidden regardless of the flag.
	d, err := e.TodayChallenge(ctx, "owner-1", true)
	require.NoError(t, err)
	assert.Equal(t, game.ChallengeNotStarted, d.State)
	assert.Empty(t, d.Secret)
	assert.True(t, d.IsToday)

	res, err := e.SubmitDailyGuess(ctx, "owner-1", "", secret)
	require.NoError(t, err)
	assert.Equal(t, game.ChallengeCompleted, res.State)

	// Completed board: still hidden until the caller asks.
	d, err = e.TodayChallenge(ctx, "owner-1", false)
	require.NoError(t, err)
	assert.Empty(t, d.Secret)

	d, err = e.TodayChallenge(ctx, "owner-1", true)
	require.NoError(t, err)
	assert.Equal(t, secret, d.Secret)
}

func TestSubmitDailyGuessUsesDailyLength(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	// A classic-length guess fails daily validation even though it would
	// pass the classic validator.
	_, err := e.SubmitDailyGuess(ctx, "owner-1", "", "01234")
	assert.ErrorIs(t, err, game.ErrWrongLength)

	secret, _ := daily.ForDate(clk.Now(), 3)
	res, err := e.SubmitDailyGuess(ctx, "owner-1", "", missFor(secret))
	require.NoError(t, err)
	assert.Equal(t, game.ChallengeInProgress, res.State)
	assert.Equal(t, 1, res.AttemptsCount)
	assert.Equal(t, 9, res.AttemptsLeft)
}

func TestGiveUpChallenge(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()

	_, err := e.GiveUpChallenge(ctx, "owner-1")
	assert.ErrorIs(t, err, store.ErrChallengeNotStarted)

	secret, _ := daily.ForDate(clk.Now(), 3)
	_, err = e.SubmitDailyGuess(ctx, "owner-1", "", missFor(secret))
	require.NoError(t, err)

	state, err := e.GiveUpChallenge(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, game.ChallengeFailed, state)

	// Giving up again just reports the terminal state.
	state, err = e.GiveUpChallenge(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, game.ChallengeFailed, state)
}

func TestChallengeKeepsPastBoardsReadable(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()
	firstDay := daily.DateKey(clk.Now())

	secret, _ := daily.ForDate(clk.Now(), 3)
	_, err := e.SubmitDailyGuess(ctx, "owner-1", "", missFor(secret))
	require.NoError(t, err)

	clk.Advance(24 * time.Hour)

	d, err := e.Challenge(ctx, "owner-1", firstDay)
	require.NoError(t, err)
	assert.True(t, d.IsExpired)
	assert.False(t, d.IsToday)
	assert.Len(t, d.Attempts, 1)

	// The stale board rejects play; the new day starts clean.
	_, err = e.SubmitDailyGuess(ctx, "owner-1", firstDay, "012")
	assert.ErrorIs(t, err, store.ErrChallengeExpired)

	today, err := e.TodayChallenge(ctx, "owner-1", false)
	require.NoError(t, err)
	assert.Equal(t, game.ChallengeNotStarted, today.State)
	assert.Empty(t, today.Attempts)
}

func TestCompletedChallengesAndLeaderboardPassThrough(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	e := newTestEngine(t, "01234", clk)
	ctx := context.Background()
	date := daily.DateKey(clk.Now())
	secret, _ := daily.ForDate(clk.Now(), 3)

	_, err := e.SubmitDailyGuess(ctx, "owner-1", "", missFor(secret))
	require.NoError(t, err)
	_, err = e.SubmitDailyGuess(ctx, "owner-1", "", secret)
	require.NoError(t, err)
	_, err = e.SubmitDailyGuess(ctx, "owner-2", "", secret)
	require.NoError(t, err)

	history, err := e.CompletedChallenges(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, date, history[0].Date)
	assert.Equal(t, 2, history[0].AttemptsCount)

	board, err := e.DailyLeaderboard(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	// owner-2 solved it in one attempt and leads.
	assert.Equal(t, 1, board[0].Attempts)
	assert.Equal(t, 2, board[1].Attempts)
}
