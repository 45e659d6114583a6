package engine

import (
	"fmt"
)

const (
	DefaultBoardSize = 15
	DefaultWinLength = 5
	DefaultDepth     = 2
	MaxBoardSize     = 25
)

type Options struct {
	BoardSize int
	WinLength int
	Depth     int
	// Color is the side BestMove plays for. Black maximises the score.
	Color Cell
}

func DefaultOptions() Options {
	return Options{
		BoardSize: DefaultBoardSize,
		WinLength: DefaultWinLength,
		Depth:     DefaultDepth,
		Color:     CellBlack,
	}
}

type Placement struct {
	Move  Move `json:"move"`
	Color Cell `json:"color"`
}

// Engine holds one game position with its incremental score and answers
// move queries for a configured side. It is not safe for concurrent use;
// Clone gives an independent copy for background searches.
type Engine struct {
	size      int
	winLength int
	depth     int
	color     Cell
	board     Board
	tracker   *ScoreTracker
	zobrist   *zobristTable
	hash      uint64
	history   []Placement
	winner    Cell
}

// New builds an engine on an empty board. Zero BoardSize, WinLength and
// Color fall back to the defaults; Depth is taken as given.
func New(opts Options) (*Engine, error) {
	if opts.BoardSize == 0 {
		opts.BoardSize = DefaultBoardSize
	}
	if opts.WinLength == 0 {
		opts.WinLength = DefaultWinLength
	}
	if opts.Color == CellEmpty {
		opts.Color = CellBlack
	}
	if opts.WinLength < 2 || opts.BoardSize < opts.WinLength || opts.BoardSize > MaxBoardSize {
		return nil, fmt.Errorf("%w: size %d, win length %d", ErrInvalidBoard, opts.BoardSize, opts.WinLength)
	}
	if opts.Depth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, opts.Depth)
	}
	if !opts.Color.IsStone() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColor, opts.Color)
	}
	e := &Engine{
		size:      opts.BoardSize,
		winLength: opts.WinLength,
		depth:     opts.Depth,
		color:     opts.Color,
		board:     NewBoard(opts.BoardSize),
		tracker:   NewScoreTracker(opts.BoardSize, opts.WinLength),
		zobrist:   zobristFor(opts.BoardSize),
	}
	return e, nil
}

// Place puts a stone for color and reports whether it wins.
func (e *Engine) Place(row, col int, color Cell) (bool, error) {
	if e.winner != CellEmpty {
		return false, fmt.Errorf("%w: %s already won", ErrGameOver, e.winner)
	}
	if !color.IsStone() {
		return false, fmt.Errorf("%w: %d", ErrInvalidColor, color)
	}
	cell, err := e.board.Get(row, col)
	if err != nil {
		return false, err
	}
	if cell != CellEmpty {
		return false, fmt.Errorf("%w: (%d,%d) holds %s", ErrOccupiedCell, row, col, cell)
	}
	move := Move{Row: row, Col: col}
	e.apply(move, color)
	e.history = append(e.history, Placement{Move: move, Color: color})
	if IsWin(e.board, move, e.winLength) {
		e.winner = color
		return true, nil
	}
	return false, nil
}

func (e *Engine) Undo() (Move, error) {
	if len(e.history) == 0 {
		return Move{}, ErrNothingToUndo
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.remove(last.Move, last.Color)
	e.winner = CellEmpty
	return last.Move, nil
}

// Reset clears the board and history, keeping depth and color.
func (e *Engine) Reset() {
	e.board.Reset(e.size)
	e.tracker.Reset(e.board)
	e.hash = 0
	e.history = e.history[:0]
	e.winner = CellEmpty
}

func (e *Engine) BestMove() (Move, error) {
	return e.BestMoveAt(e.depth)
}

func (e *Engine) BestMoveAt(depth int) (Move, error) {
	res, err := e.Search(depth)
	if err != nil {
		return Move{}, err
	}
	return res.Move, nil
}

// GreedyMove tries the engine's color on every empty cell and returns the
// cell with the strictly best resulting score. ok is false on a full board.
func (e *Engine) GreedyMove() (Move, int, bool) {
	var best Move
	bestScore := 0
	found := false
	for row := 0; row < e.size; row++ {
		for col := 0; col < e.size; col++ {
			if e.board.at(row, col) != CellEmpty {
				continue
			}
			move := Move{Row: row, Col: col}
			var score int
			e.withMove(move, e.color, func() {
				score = e.tracker.Total()
			})
			if !found || e.better(score, bestScore) {
				best = move
				bestScore = score
				found = true
			}
		}
	}
	return best, bestScore, found
}

func (e *Engine) CurrentScore() int {
	return e.tracker.Total()
}

func (e *Engine) SetDepth(depth int) error {
	if depth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}
	e.depth = depth
	return nil
}

func (e *Engine) Depth() int {
	return e.depth
}

func (e *Engine) Color() Cell {
	return e.color
}

func (e *Engine) SetColor(color Cell) error {
	if !color.IsStone() {
		return fmt.Errorf("%w: %d", ErrInvalidColor, color)
	}
	e.color = color
	return nil
}

func (e *Engine) Size() int {
	return e.size
}

func (e *Engine) WinLength() int {
	return e.winLength
}

func (e *Engine) Board() Board {
	return e.board.Clone()
}

func (e *Engine) Cell(row, col int) (Cell, error) {
	return e.board.Get(row, col)
}

func (e *Engine) Moves() []Placement {
	out := make([]Placement, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Engine) LastMove() (Placement, bool) {
	if len(e.history) == 0 {
		return Placement{}, false
	}
	return e.history[len(e.history)-1], true
}

func (e *Engine) Winner() Cell {
	return e.winner
}

func (e *Engine) WinningLine() ([]Move, bool) {
	last, ok := e.LastMove()
	if !ok || e.winner == CellEmpty {
		return nil, false
	}
	return WinningLine(e.board, last.Move, e.winLength)
}

func (e *Engine) IsFull() bool {
	return len(e.history) == e.size*e.size
}

func (e *Engine) Fingerprint() uint64 {
	return e.hash
}

func (e *Engine) Tracker() *ScoreTracker {
	return e.tracker
}

func (e *Engine) Clone() *Engine {
	clone := *e
	clone.board = e.board.Clone()
	clone.tracker = e.tracker.Clone()
	clone.history = append([]Placement(nil), e.history...)
	return &clone
}

func (e *Engine) apply(move Move, color Cell) {
	e.board.put(move.Row, move.Col, color)
	e.tracker.Update(e.board, move.Row, move.Col)
	e.hash ^= e.zobrist.stone(move.Row, move.Col, color)
}

func (e *Engine) remove(move Move, color Cell) {
	e.board.put(move.Row, move.Col, CellEmpty)
	e.tracker.Update(e.board, move.Row, move.Col)
	e.hash ^= e.zobrist.stone(move.Row, move.Col, color)
}

// withMove runs fn with color placed at move and always takes the stone
// back afterwards.
func (e *Engine) withMove(move Move, color Cell, fn func()) {
	e.apply(move, color)
	defer e.remove(move, color)
	fn()
}

// better reports whether score beats best from the engine's side.
func (e *Engine) better(score, best int) bool {
	if e.color == CellBlack {
		return score > best
	}
	return score < best
}
