package engine

// AvailableMoves returns every empty cell adjacent (including diagonally) to
// a stone, in row-major order. An empty board has no candidates.
func AvailableMoves(board Board) []Move {
	size := board.Size()
	moves := make([]Move, 0, 32)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if board.at(row, col) != CellEmpty {
				continue
			}
			if hasNeighbor(board, row, col) {
				moves = append(moves, Move{Row: row, Col: col})
			}
		}
	}
	return moves
}

func hasNeighbor(board Board, row, col int) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r := row + dr
			c := col + dc
			if board.InBounds(r, c) && board.at(r, c) != CellEmpty {
				return true
			}
		}
	}
	return false
}
