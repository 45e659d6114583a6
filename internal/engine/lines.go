package engine

type LineFamily int

const (
	LineRow  LineFamily = iota // -
	LineCol                    // |
	LineAnti                   // /  (row+col constant)
	LineDiag                   // \  (col-row constant)
)

var lineFamilies = [4]LineFamily{LineRow, LineCol, LineAnti, LineDiag}

func (f LineFamily) String() string {
	switch f {
	case LineRow:
		return "row"
	case LineCol:
		return "col"
	case LineAnti:
		return "anti"
	case LineDiag:
		return "diag"
	default:
		return "unknown"
	}
}

// Line is one full row, column or diagonal, described by its edge anchor and
// the direction that walks it to the opposite edge.
type Line struct {
	Family   LineFamily
	Index    int
	StartRow int
	StartCol int
	DRow     int
	DCol     int
	Length   int
}

func (l Line) Anchor() Move {
	return Move{Row: l.StartRow, Col: l.StartCol}
}

func (l Line) Cell(step int) Move {
	return Move{Row: l.StartRow + step*l.DRow, Col: l.StartCol + step*l.DCol}
}

func LineCount(family LineFamily, size int) int {
	if family == LineRow || family == LineCol {
		return size
	}
	return 2*size - 1
}

// LineIndex maps a cell to the index of its line within family.
func LineIndex(family LineFamily, size, row, col int) int {
	switch family {
	case LineRow:
		return row
	case LineCol:
		return col
	case LineAnti:
		return row + col
	default:
		return col - row + size - 1
	}
}

// LineAt builds the line of family at index. Diagonals are anchored on the
// top edge when the top edge contains one of their cells, otherwise on the
// bottom edge, so every diagonal has exactly one anchor.
func LineAt(family LineFamily, size, index int) Line {
	l := Line{Family: family, Index: index}
	switch family {
	case LineRow:
		l.StartRow, l.StartCol = index, 0
		l.DRow, l.DCol = 0, 1
		l.Length = size
	case LineCol:
		l.StartRow, l.StartCol = 0, index
		l.DRow, l.DCol = 1, 0
		l.Length = size
	case LineAnti:
		if index <= size-1 {
			l.StartRow, l.StartCol = 0, index
			l.DRow, l.DCol = 1, -1
			l.Length = index + 1
		} else {
			l.StartRow, l.StartCol = size-1, index-(size-1)
			l.DRow, l.DCol = -1, 1
			l.Length = 2*size - 1 - index
		}
	case LineDiag:
		offset := index - (size - 1)
		if offset >= 0 {
			l.StartRow, l.StartCol = 0, offset
			l.DRow, l.DCol = 1, 1
			l.Length = size - offset
		} else {
			l.StartRow, l.StartCol = size-1, size-1+offset
			l.DRow, l.DCol = -1, -1
			l.Length = size + offset
		}
	}
	return l
}

func LinesThrough(size, row, col int) [4]Line {
	var out [4]Line
	for i, family := range lineFamilies {
		out[i] = LineAt(family, size, LineIndex(family, size, row, col))
	}
	return out
}
