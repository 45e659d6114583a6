package engine

// ScoreTracker caches the score of every line on the board and keeps their
// sum current as stones are placed and removed.
type ScoreTracker struct {
	size      int
	winLength int
	lines     [4][]Line
	scores    [4][]int
	total     int
}

func NewScoreTracker(size, winLength int) *ScoreTracker {
	t := &ScoreTracker{size: size, winLength: winLength}
	for _, family := range lineFamilies {
		count := LineCount(family, size)
		t.lines[family] = make([]Line, count)
		t.scores[family] = make([]int, count)
		for i := 0; i < count; i++ {
			t.lines[family][i] = LineAt(family, size, i)
		}
	}
	return t
}

// Update rescores the four lines through (row, col) and returns the new
// total. Placement and removal both call it after the board changes.
func (t *ScoreTracker) Update(board Board, row, col int) int {
	for _, family := range lineFamilies {
		idx := LineIndex(family, t.size, row, col)
		fresh := ScoreLine(board, t.lines[family][idx], t.winLength)
		t.total += fresh - t.scores[family][idx]
		t.scores[family][idx] = fresh
	}
	return t.total
}

func (t *ScoreTracker) Total() int {
	return t.total
}

func (t *ScoreTracker) LineScore(family LineFamily, index int) int {
	if family < LineRow || family > LineDiag || index < 0 || index >= len(t.scores[family]) {
		return 0
	}
	return t.scores[family][index]
}

func (t *ScoreTracker) Line(family LineFamily, index int) (Line, bool) {
	if family < LineRow || family > LineDiag || index < 0 || index >= len(t.lines[family]) {
		return Line{}, false
	}
	return t.lines[family][index], true
}

// Recompute scores every line from scratch without touching the cache.
func (t *ScoreTracker) Recompute(board Board) int {
	total := 0
	for _, family := range lineFamilies {
		for _, line := range t.lines[family] {
			total += ScoreLine(board, line, t.winLength)
		}
	}
	return total
}

// Reset rebuilds the cache from board.
func (t *ScoreTracker) Reset(board Board) {
	t.total = 0
	for _, family := range lineFamilies {
		for i, line := range t.lines[family] {
			score := ScoreLine(board, line, t.winLength)
			t.scores[family][i] = score
			t.total += score
		}
	}
}

func (t *ScoreTracker) Clone() *ScoreTracker {
	clone := &ScoreTracker{size: t.size, winLength: t.winLength, total: t.total}
	for _, family := range lineFamilies {
		// Lines are immutable once built.
		clone.lines[family] = t.lines[family]
		clone.scores[family] = append([]int(nil), t.scores[family]...)
	}
	return clone
}
