package engine

import (
	"fmt"
	"math"
	"time"
)

type SearchStats struct {
	Nodes   int64         `json:"nodes"`
	Leaves  int64         `json:"leaves"`
	Cutoffs int64         `json:"cutoffs"`
	Elapsed time.Duration `json:"elapsed"`
}

type SearchResult struct {
	Move  Move        `json:"move"`
	Score int         `json:"score"`
	Depth int         `json:"depth"`
	Color Cell        `json:"color"`
	Stats SearchStats `json:"stats"`
}

// Search picks the engine color's move by minimax with alpha-beta pruning.
// Candidates are tried in row-major order and ties keep the first one. An
// empty board answers with the center cell.
func (e *Engine) Search(depth int) (SearchResult, error) {
	if depth < 0 {
		return SearchResult{}, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}
	start := time.Now()
	res := SearchResult{Depth: depth, Color: e.color}
	if len(e.history) == 0 && e.board.Stones() == 0 {
		center := e.size / 2
		res.Move = Move{Row: center, Col: center}
		e.withMove(res.Move, e.color, func() {
			res.Score = e.tracker.Total()
		})
		res.Stats.Elapsed = time.Since(start)
		return res, nil
	}
	moves := AvailableMoves(e.board)
	if len(moves) == 0 {
		return SearchResult{}, ErrNoMoves
	}

	s := &searcher{e: e}
	maximizing := e.color == CellBlack
	alpha, beta := math.MinInt, math.MaxInt
	child := depth - 1
	if child < 0 {
		child = 0
	}
	bestScore := math.MaxInt
	if maximizing {
		bestScore = math.MinInt
	}
	best := moves[0]
	for _, move := range moves {
		m := move
		var score int
		e.withMove(m, e.color, func() {
			s.stats.Nodes++
			score = s.minimax(child, alpha, beta, !maximizing, m)
		})
		if maximizing {
			if score > bestScore {
				bestScore = score
				best = m
			}
			if bestScore > alpha {
				alpha = bestScore
			}
		} else {
			if score < bestScore {
				bestScore = score
				best = m
			}
			if bestScore < beta {
				beta = bestScore
			}
		}
	}
	res.Move = best
	res.Score = bestScore
	res.Stats = s.stats
	res.Stats.Elapsed = time.Since(start)
	return res, nil
}

type searcher struct {
	e     *Engine
	stats SearchStats
}

// minimax evaluates the position after last was played. A win at last ends
// the line with the static score, the same as running out of depth.
func (s *searcher) minimax(depth, alpha, beta int, maximizing bool, last Move) int {
	e := s.e
	if depth == 0 || IsWin(e.board, last, e.winLength) {
		s.stats.Leaves++
		return e.tracker.Total()
	}
	moves := AvailableMoves(e.board)
	if len(moves) == 0 {
		s.stats.Leaves++
		return e.tracker.Total()
	}
	if maximizing {
		value := math.MinInt
		for _, move := range moves {
			m := move
			var score int
			e.withMove(m, CellBlack, func() {
				s.stats.Nodes++
				score = s.minimax(depth-1, alpha, beta, false, m)
			})
			if score > value {
				value = score
			}
			if value > alpha {
				alpha = value
			}
			if beta <= alpha {
				s.stats.Cutoffs++
				break
			}
		}
		return value
	}
	value := math.MaxInt
	for _, move := range moves {
		m := move
		var score int
		e.withMove(m, CellWhite, func() {
			s.stats.Nodes++
			score = s.minimax(depth-1, alpha, beta, true, m)
		})
		if score < value {
			value = score
		}
		if value < beta {
			beta = value
		}
		if beta <= alpha {
			s.stats.Cutoffs++
			break
		}
	}
	return value
}
