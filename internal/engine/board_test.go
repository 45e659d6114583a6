package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardGetSetBounds(t *testing.T) {
	b := NewBoard(15)
	require.NoError(t, b.Set(0, 14, CellBlack))
	cell, err := b.Get(0, 14)
	require.NoError(t, err)
	assert.Equal(t, CellBlack, cell)

	// (1,-1) must not alias (0,14) in the flat storage.
	_, err = b.Get(1, -1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	for _, coord := range [][2]int{{-1, 0}, {0, -1}, {15, 0}, {0, 15}, {15, 15}} {
		err := b.Set(coord[0], coord[1], CellWhite)
		assert.ErrorIs(t, err, ErrOutOfRange, "coord %v", coord)
	}
	assert.Equal(t, 1, b.Stones())
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := NewBoard(5)
	require.NoError(t, b.Set(2, 2, CellWhite))
	clone := b.Clone()
	require.True(t, clone.Equal(b))
	require.NoError(t, clone.Set(0, 0, CellBlack))
	assert.False(t, clone.Equal(b))
	cell, _ := b.Get(0, 0)
	assert.Equal(t, CellEmpty, cell)
}

func TestCellOpponent(t *testing.T) {
	assert.Equal(t, CellWhite, CellBlack.Opponent())
	assert.Equal(t, CellBlack, CellWhite.Opponent())
	assert.Equal(t, CellEmpty, CellEmpty.Opponent())
	assert.Equal(t, "Black", CellBlack.String())
}

func TestBoardIsFull(t *testing.T) {
	b := NewBoard(2)
	assert.False(t, b.IsFull())
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			require.NoError(t, b.Set(row, col, CellBlack))
		}
	}
	assert.True(t, b.IsFull())
}
