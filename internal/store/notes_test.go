package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
)

func TestSetDigitMark(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	require.NoError(t, s.SetDigitMark(ctx, "owner-1", detail.ID, 3, game.MarkGood))

	got, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	assert.Equal(t, game.MarkGood, got.DigitNotes[3].Mark)
	assert.Equal(t, game.MarkUnknown, got.DigitNotes[4].Mark, "other digits untouched")
}

func TestSetDigitMarkValidation(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetDigitMark(ctx, "owner-1", detail.ID, 10, game.MarkGood), ErrInvalidDigit)
	assert.ErrorIs(t, s.SetDigitMark(ctx, "owner-1", detail.ID, -1, game.MarkGood), ErrInvalidDigit)
	assert.ErrorIs(t, s.SetDigitMark(ctx, "owner-1", detail.ID, 3, game.Mark("great")), ErrInvalidMark)
	assert.ErrorIs(t, s.SetDigitMark(ctx, "owner-1", "no-such-id", 3, game.MarkGood), ErrGameNotFound)
}

func TestToggleDigitMarkCyclesInFourSteps(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	want := []game.Mark{game.MarkPoor, game.MarkFair, game.MarkGood, game.MarkUnknown}
	for _, expected := range want {
		mark, err := s.ToggleDigitMark(ctx, "owner-1", detail.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, expected, mark)
	}

	got, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	assert.Equal(t, game.MarkUnknown, got.DigitNotes[5].Mark, "four toggles close the cycle")
}

func TestResetDigitNotes(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, _ := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)
	for digit := 0; digit < 10; digit++ {
		require.NoError(t, s.SetDigitMark(ctx, "owner-1", detail.ID, digit, game.MarkFair))
	}

	require.NoError(t, s.ResetDigitNotes(ctx, "owner-1", detail.ID))

	got, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	for _, note := range got.DigitNotes {
		assert.Equal(t, game.MarkUnknown, note.Mark)
	}
}

func TestMissingDigitNoteIsRepairedOnRead(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, path := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	// Corrupt the board behind the actor's back.
	execRaw(t, path, `DELETE FROM digit_notes WHERE game_id = ? AND digit = 6`, detail.ID)

	got, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	assert.Equal(t, DigitNote{Digit: 6, Mark: game.MarkUnknown}, got.DigitNotes[6],
		"missing note synthesized as unknown")

	// The repair is durable, not cosmetic.
	again, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	assert.Equal(t, game.MarkUnknown, again.DigitNotes[6].Mark)
}

func TestMissingDigitNoteIsRepairedOnToggle(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, path := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	execRaw(t, path, `DELETE FROM digit_notes WHERE game_id = ? AND digit = 2`, detail.ID)

	// Toggling a vanished note heals it to unknown first, then advances.
	mark, err := s.ToggleDigitMark(ctx, "owner-1", detail.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, game.MarkPoor, mark)
}

func TestUnreadableMarkTreatedAsUnknown(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s, path := openTestStore(t, testConfig("01234", clk))
	ctx := context.Background()

	detail, err := s.FetchOrCreateGame(ctx, "owner-1")
	require.NoError(t, err)

	execRaw(t, path, `UPDATE digit_notes SET mark = 'scribble' WHERE game_id = ? AND digit = 9`, detail.ID)

	got, err := s.GameDetail(ctx, "owner-1", detail.ID)
	require.NoError(t, err)
	assert.Equal(t, game.MarkUnknown, got.DigitNotes[9].Mark)

	mark, err := s.ToggleDigitMark(ctx, "owner-1", detail.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, game.MarkPoor, mark, "cycle restarts from unknown")
}
