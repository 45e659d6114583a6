package engine

const (
	scoreFive = 10000
)

// patternScores[length][blockedEnds] for runs shorter than five.
var patternScores = [5][3]int{
	{0, 0, 0},
	{8, 2, 0},
	{80, 8, 0},
	{800, 200, 0},
	{4000, 2000, 0},
}

// PatternScore is the unsigned value of a run of length stones with the given
// number of blocked ends.
func PatternScore(length, blocked int) int {
	if length <= 0 || blocked < 0 || blocked > 2 {
		return 0
	}
	if length >= 5 {
		return scoreFive
	}
	return patternScores[length][blocked]
}

func runScore(color Cell, length, blocked int) int {
	score := PatternScore(length, blocked)
	if color == CellWhite {
		return -score
	}
	return score
}

// ScoreLine walks line from its anchor and sums the signed pattern scores of
// every run. The edge before the first cell counts as a blocked end.
func ScoreLine(board Board, line Line, winLength int) int {
	size := board.Size()
	score := 0
	leftBlocked := true
	runColor := CellEmpty
	runLen := 0
	length := 0
	row, col := line.StartRow, line.StartCol
	for row >= 0 && col >= 0 && row < size && col < size {
		cell := board.at(row, col)
		if cell == CellEmpty {
			if runLen > 0 {
				score += runScore(runColor, runLen, blockedEnds(leftBlocked, false))
				runLen = 0
			}
			leftBlocked = false
		} else {
			if runLen > 0 && cell != runColor {
				score += runScore(runColor, runLen, blockedEnds(leftBlocked, true))
				runLen = 0
				leftBlocked = true
			}
			runColor = cell
			runLen++
		}
		row += line.DRow
		col += line.DCol
		length++
	}
	if length < winLength {
		return 0
	}
	if runLen > 0 {
		score += runScore(runColor, runLen, blockedEnds(leftBlocked, true))
	}
	if length != size {
		score = floorDiv(score*length, size)
	}
	return score
}

func blockedEnds(left, right bool) int {
	n := 0
	if left {
		n++
	}
	if right {
		n++
	}
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
