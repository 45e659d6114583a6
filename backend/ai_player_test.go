package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

func newTestEngine(t *testing.T, size int) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Options{BoardSize: size, WinLength: 5, Depth: 1, Color: engine.CellBlack})
	require.NoError(t, err)
	return eng
}

func TestChooseMoveOnEmptyBoardPicksCenter(t *testing.T) {
	eng := newTestEngine(t, 15)
	ai := NewAIPlayer()

	res, err := ai.ChooseMove(context.Background(), eng, PlayerBlack, 2, "test")
	require.NoError(t, err)
	assert.Equal(t, engine.Move{Row: 7, Col: 7}, res.Move)
}

func TestChooseMoveLeavesGameEngineUntouched(t *testing.T) {
	eng := newTestEngine(t, 15)
	for i, mv := range []engine.Move{{Row: 7, Col: 7}, {Row: 7, Col: 8}, {Row: 8, Col: 8}} {
		color := engine.CellBlack
		if i%2 == 1 {
			color = engine.CellWhite
		}
		_, err := eng.Place(mv.Row, mv.Col, color)
		require.NoError(t, err)
	}
	before := eng.Fingerprint()
	beforeScore := eng.CurrentScore()

	ai := NewAIPlayer()
	_, err := ai.ChooseMove(context.Background(), eng, PlayerWhite, 2, "test")
	require.NoError(t, err)
	assert.Equal(t, before, eng.Fingerprint())
	assert.Equal(t, beforeScore, eng.CurrentScore())
	assert.Equal(t, engine.CellBlack, eng.Color())
}

func TestStartThinkingStoresResult(t *testing.T) {
	eng := newTestEngine(t, 15)
	_, err := eng.Place(7, 7, engine.CellBlack)
	require.NoError(t, err)
	ai := NewAIPlayer()

	done := make(chan engine.SearchResult, 1)
	ai.StartThinking(eng, PlayerWhite, 1, "test", func(res engine.SearchResult) {
		done <- res
	})
	ai.Wait()

	assert.False(t, ai.IsThinking())
	require.True(t, ai.HasMoveReady())
	res, err := ai.TakeMove()
	require.NoError(t, err)
	assert.Equal(t, engine.CellWhite, res.Color)
	assert.True(t, eng.Board().IsEmpty(res.Move.Row, res.Move.Col), "picked occupied cell %s", res.Move)
	assert.False(t, ai.HasMoveReady(), "TakeMove consumes the ready move")

	select {
	case got := <-done:
		assert.Equal(t, res.Move, got.Move)
	default:
		assert.Fail(t, "completion callback did not run")
	}
}

func TestStopThinkingDiscardsResult(t *testing.T) {
	eng := newTestEngine(t, 15)
	_, err := eng.Place(7, 7, engine.CellBlack)
	require.NoError(t, err)
	ai := NewAIPlayer()
	ai.StartThinking(eng, PlayerWhite, 2, "test", nil)
	ai.StopThinking()
	ai.Wait()

	assert.False(t, ai.HasMoveReady())
	assert.False(t, ai.IsThinking())
}

func TestFormatBytes(t *testing.T) {
	cases := map[uint64]string{
		512:     "512 B",
		2048:    "2.00 kB",
		3 << 20: "3.00 MB",
		5 << 30: "5.00 GB",
	}
	for n, want := range cases {
		assert.Equal(t, want, formatBytes(n), "formatBytes(%d)", n)
	}
}
