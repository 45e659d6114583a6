package engine

import "fmt"

type Cell int8

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

// Opponent returns the other stone color. Empty stays empty.
func (c Cell) Opponent() Cell {
	switch c {
	case CellBlack:
		return CellWhite
	case CellWhite:
		return CellBlack
	default:
		return CellEmpty
	}
}

func (c Cell) IsStone() bool {
	return c == CellBlack || c == CellWhite
}

type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewMove(row, col int) Move {
	return Move{Row: row, Col: col}
}

func (m Move) IsValid(boardSize int) bool {
	return m.Row >= 0 && m.Col >= 0 && m.Row < boardSize && m.Col < boardSize
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

// Board is a square grid of cells stored row-major.
type Board struct {
	size  int
	cells []Cell
}

func NewBoard(size int) Board {
	b := Board{}
	b.Reset(size)
	return b
}

func (b *Board) Reset(size int) {
	b.size = size
	b.cells = make([]Cell, size*size)
}

func (b Board) Size() int {
	return b.size
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < b.size && col < b.size
}

func (b Board) Get(row, col int) (Cell, error) {
	if !b.InBounds(row, col) {
		return CellEmpty, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfRange, row, col, b.size, b.size)
	}
	return b.cells[b.index(row, col)], nil
}

func (b *Board) Set(row, col int, value Cell) error {
	if !b.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfRange, row, col, b.size, b.size)
	}
	b.cells[b.index(row, col)] = value
	return nil
}

func (b Board) IsEmpty(row, col int) bool {
	return b.InBounds(row, col) && b.at(row, col) == CellEmpty
}

func (b Board) Stones() int {
	count := 0
	for _, cell := range b.cells {
		if cell != CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) IsFull() bool {
	return b.Stones() == len(b.cells)
}

func (b Board) Clone() Board {
	clone := Board{size: b.size}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) Equal(other Board) bool {
	if b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// at and put skip bounds checks; callers validate coordinates first.
func (b Board) at(row, col int) Cell {
	return b.cells[b.index(row, col)]
}

func (b *Board) put(row, col int, value Cell) {
	b.cells[b.index(row, col)] = value
}

func (b Board) index(row, col int) int {
	return row*b.size + col
}
