package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeAll(t *testing.T, b *Board, color Cell, moves ...Move) {
	t.Helper()
	for _, m := range moves {
		require.NoError(t, b.Set(m.Row, m.Col, color))
	}
}

func TestIsWinAxes(t *testing.T) {
	cases := []struct {
		name  string
		moves []Move
		last  Move
	}{
		{"horizontal", []Move{{7, 3}, {7, 4}, {7, 5}, {7, 6}, {7, 7}}, Move{7, 5}},
		{"vertical", []Move{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}, Move{4, 0}},
		{"diagonal", []Move{{10, 10}, {11, 11}, {12, 12}, {13, 13}, {14, 14}}, Move{10, 10}},
		{"anti diagonal", []Move{{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}}, Move{2, 2}},
		{"overline", []Move{{3, 3}, {3, 4}, {3, 5}, {3, 6}, {3, 7}, {3, 8}}, Move{3, 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBoard(15)
			placeAll(t, &b, CellWhite, tc.moves...)
			assert.True(t, IsWin(b, tc.last, 5))
			line, ok := WinningLine(b, tc.last, 5)
			require.True(t, ok)
			assert.Len(t, line, len(tc.moves))
		})
	}
}

func TestIsWinFourOrBrokenIsNotWin(t *testing.T) {
	b := NewBoard(15)
	placeAll(t, &b, CellBlack, Move{7, 3}, Move{7, 4}, Move{7, 5}, Move{7, 6})
	assert.False(t, IsWin(b, Move{7, 6}, 5))

	placeAll(t, &b, CellWhite, Move{7, 7})
	placeAll(t, &b, CellBlack, Move{7, 8})
	assert.False(t, IsWin(b, Move{7, 8}, 5))
	assert.False(t, IsWin(b, Move{7, 7}, 5))
}

func TestIsWinEmptyOrOutside(t *testing.T) {
	b := NewBoard(15)
	assert.False(t, IsWin(b, Move{7, 7}, 5))
	assert.False(t, IsWin(b, Move{-1, 3}, 5))
	assert.False(t, IsWin(b, Move{3, 15}, 5))
	_, ok := WinningLine(b, Move{7, 7}, 5)
	assert.False(t, ok)
}

func TestBlockedFourNeverWins(t *testing.T) {
	e, err := New(DefaultOptions())
	require.NoError(t, err)
	four := []Move{{7, 3}, {7, 4}, {7, 5}, {7, 6}}
	for _, m := range four {
		won, err := e.Place(m.Row, m.Col, CellBlack)
		require.NoError(t, err)
		require.False(t, won)
	}
	for _, m := range []Move{{7, 2}, {7, 7}} {
		won, err := e.Place(m.Row, m.Col, CellWhite)
		require.NoError(t, err)
		require.False(t, won)
	}

	later := []Placement{
		{Move{7, 8}, CellBlack},
		{Move{10, 10}, CellWhite},
		{Move{8, 4}, CellBlack},
		{Move{3, 3}, CellWhite},
		{Move{6, 5}, CellBlack},
		{Move{7, 1}, CellWhite},
		{Move{0, 0}, CellBlack},
		{Move{7, 9}, CellBlack},
	}
	for _, p := range later {
		won, err := e.Place(p.Move.Row, p.Move.Col, p.Color)
		require.NoError(t, err)
		assert.False(t, won, "placing %s at %v", p.Color, p.Move)
		for _, m := range four {
			assert.False(t, IsWin(e.Board(), m, e.WinLength()), "four through %v after %v", m, p.Move)
		}
		assert.Equal(t, CellEmpty, e.Winner())
	}
}
