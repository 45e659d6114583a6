package engine

var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// IsWin reports whether the stone at last completes a run of at least
// winLength on any axis. It only looks at lines through last, so it is
// meaningful right after a placement there.
func IsWin(board Board, last Move, winLength int) bool {
	if !last.IsValid(board.Size()) {
		return false
	}
	if board.at(last.Row, last.Col) == CellEmpty {
		return false
	}
	for i := 0; i < len(axes); i++ {
		dr := axes[i][0]
		dc := axes[i][1]
		count := 1
		count += countDirection(board, last, dr, dc)
		count += countDirection(board, last, -dr, -dc)
		if count >= winLength {
			return true
		}
	}
	return false
}

func WinningLine(board Board, last Move, winLength int) ([]Move, bool) {
	if !last.IsValid(board.Size()) || board.at(last.Row, last.Col) == CellEmpty {
		return nil, false
	}
	for i := 0; i < len(axes); i++ {
		line := collectLine(board, last, axes[i][0], axes[i][1])
		if len(line) >= winLength {
			return line, true
		}
	}
	return nil, false
}

func countDirection(board Board, start Move, dr, dc int) int {
	target := board.at(start.Row, start.Col)
	row := start.Row + dr
	col := start.Col + dc
	count := 0
	for board.InBounds(row, col) && board.at(row, col) == target {
		count++
		row += dr
		col += dc
	}
	return count
}

func collectLine(board Board, start Move, dr, dc int) []Move {
	target := board.at(start.Row, start.Col)
	row := start.Row
	col := start.Col
	for board.InBounds(row-dr, col-dc) && board.at(row-dr, col-dc) == target {
		row -= dr
		col -= dc
	}
	line := []Move{}
	for board.InBounds(row, col) && board.at(row, col) == target {
		line = append(line, Move{Row: row, Col: col})
		row += dr
		col += dc
	}
	return line
}
