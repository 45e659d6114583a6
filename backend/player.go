package main

import "github.com/AISoldierWYN/Gomoku/internal/engine"

type IPlayer interface {
	IsHuman() bool
}

// HumanPlayer holds the move submitted from a UI until the next tick.
type HumanPlayer struct {
	pending     bool
	pendingMove engine.Move
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) Submit(move engine.Move) {
	h.pendingMove = move
	h.pending = true
}

func (h *HumanPlayer) Take() (engine.Move, bool) {
	if !h.pending {
		return engine.Move{}, false
	}
	h.pending = false
	return h.pendingMove, true
}
