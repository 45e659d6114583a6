package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullMinimax is the same search without pruning.
func fullMinimax(e *Engine, depth int, maximizing bool, last Move) int {
	if depth == 0 || IsWin(e.board, last, e.winLength) {
		return e.tracker.Total()
	}
	moves := AvailableMoves(e.board)
	if len(moves) == 0 {
		return e.tracker.Total()
	}
	color := CellWhite
	value := math.MaxInt
	if maximizing {
		color = CellBlack
		value = math.MinInt
	}
	for _, m := range moves {
		var score int
		e.withMove(m, color, func() {
			score = fullMinimax(e, depth-1, !maximizing, m)
		})
		if maximizing && score > value || !maximizing && score < value {
			value = score
		}
	}
	return value
}

func fullSearch(e *Engine, depth int) (Move, int) {
	maximizing := e.color == CellBlack
	best := Move{}
	bestScore := math.MaxInt
	if maximizing {
		bestScore = math.MinInt
	}
	child := depth - 1
	if child < 0 {
		child = 0
	}
	for _, m := range AvailableMoves(e.board) {
		var score int
		e.withMove(m, e.color, func() {
			score = fullMinimax(e, child, !maximizing, m)
		})
		if maximizing && score > bestScore || !maximizing && score < bestScore {
			best, bestScore = m, score
		}
	}
	return best, bestScore
}

func randomPosition(t *testing.T, rng *rand.Rand, size, stones int) *Engine {
	t.Helper()
	e, err := New(Options{BoardSize: size, WinLength: 5, Depth: 2, Color: CellBlack})
	require.NoError(t, err)
	color := CellBlack
	for placed := 0; placed < stones; {
		row, col := rng.Intn(size), rng.Intn(size)
		if cell, _ := e.Cell(row, col); cell != CellEmpty {
			continue
		}
		won, err := e.Place(row, col, color)
		require.NoError(t, err)
		if won {
			_, err = e.Undo()
			require.NoError(t, err)
			continue
		}
		color = color.Opponent()
		placed++
	}
	return e
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 12; i++ {
		e := randomPosition(t, rng, 5, 2+rng.Intn(6))
		for _, color := range []Cell{CellBlack, CellWhite} {
			require.NoError(t, e.SetColor(color))
			for _, depth := range []int{1, 2} {
				wantMove, wantScore := fullSearch(e, depth)
				res, err := e.Search(depth)
				require.NoError(t, err)
				assert.Equal(t, wantMove, res.Move, "position %d color %s depth %d", i, color, depth)
				assert.Equal(t, wantScore, res.Score, "position %d color %s depth %d", i, color, depth)
			}
		}
	}
}

func TestSearchRestoresState(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := randomPosition(t, rng, 9, 8)
	board := e.Board()
	score := e.CurrentScore()
	hash := e.Fingerprint()
	moves := e.Moves()

	res, err := e.Search(3)
	require.NoError(t, err)
	assert.True(t, board.Equal(e.board))
	assert.Equal(t, score, e.CurrentScore())
	assert.Equal(t, hash, e.Fingerprint())
	assert.Equal(t, moves, e.Moves())
	assert.Equal(t, e.Tracker().Recompute(e.board), e.CurrentScore())
	assert.Positive(t, res.Stats.Nodes)
	assert.Positive(t, res.Stats.Leaves)
}

func TestSearchEmptyBoardPlaysCenter(t *testing.T) {
	e, err := New(DefaultOptions())
	require.NoError(t, err)
	move, err := e.BestMove()
	require.NoError(t, err)
	assert.Equal(t, Move{7, 7}, move)
	assert.Equal(t, 0, len(e.Moves()))
}

func TestSearchRejectsNegativeDepth(t *testing.T) {
	e, err := New(DefaultOptions())
	require.NoError(t, err)
	_, err = e.Search(-1)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	assert.ErrorIs(t, e.SetDepth(-3), ErrInvalidDepth)
	assert.Equal(t, DefaultDepth, e.Depth())
}

func TestSearchTakesWinningMove(t *testing.T) {
	e, err := New(Options{Depth: 1, Color: CellBlack})
	require.NoError(t, err)
	for _, m := range []Move{{7, 5}, {7, 6}, {7, 7}, {7, 8}} {
		_, err := e.Place(m.Row, m.Col, CellBlack)
		require.NoError(t, err)
	}
	for _, m := range []Move{{8, 5}, {9, 9}, {3, 3}} {
		_, err := e.Place(m.Row, m.Col, CellWhite)
		require.NoError(t, err)
	}
	move, err := e.BestMove()
	require.NoError(t, err)
	won, err := e.Place(move.Row, move.Col, CellBlack)
	require.NoError(t, err)
	assert.True(t, won, "expected a winning move, got %v", move)
}

func TestSearchWhiteBlocksFour(t *testing.T) {
	e, err := New(Options{Depth: 2, Color: CellWhite})
	require.NoError(t, err)
	for _, m := range []Move{{7, 5}, {7, 6}, {7, 7}, {7, 8}} {
		_, err := e.Place(m.Row, m.Col, CellBlack)
		require.NoError(t, err)
	}
	_, err = e.Place(7, 4, CellWhite)
	require.NoError(t, err)
	move, err := e.BestMove()
	require.NoError(t, err)
	assert.Equal(t, Move{7, 9}, move)
}

func TestSearchNoCandidates(t *testing.T) {
	e, err := New(Options{BoardSize: 5, WinLength: 5, Depth: 1})
	require.NoError(t, err)
	colors := []Cell{CellBlack, CellBlack, CellWhite, CellWhite}
	i := 0
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			e.apply(Move{row, col}, colors[(i+row)%4])
			i++
		}
	}
	_, err = e.Search(1)
	assert.ErrorIs(t, err, ErrNoMoves)
}
