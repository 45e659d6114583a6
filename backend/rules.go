package main

import (
	"fmt"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type Rules struct {
	settings GameSettings
}

func NewRules(settings GameSettings) Rules {
	return Rules{settings: settings}
}

func (r Rules) IsLegal(state GameState, move engine.Move, player PlayerColor) (bool, string) {
	if state.Status != StatusRunning {
		return false, "game not running"
	}
	if player != state.ToMove {
		return false, "not your turn"
	}
	if !move.IsValid(r.settings.BoardSize) {
		return false, "out of bounds"
	}
	if !state.Board.IsEmpty(move.Row, move.Col) {
		return false, "occupied"
	}
	return true, ""
}

func (r Rules) IsLegalDefault(state GameState, move engine.Move) (bool, string) {
	return r.IsLegal(state, move, state.ToMove)
}

func (r Rules) IsWin(board engine.Board, lastMove engine.Move) bool {
	return engine.IsWin(board, lastMove, r.settings.WinLength)
}

func (r Rules) IsDraw(board engine.Board) bool {
	return board.IsFull()
}

func (r Rules) FindAlignmentLine(board engine.Board, lastMove engine.Move) ([]engine.Move, bool) {
	return engine.WinningLine(board, lastMove, r.settings.WinLength)
}

func (r Rules) WinLength() int {
	return r.settings.WinLength
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{board=%d win=%d}", r.settings.BoardSize, r.settings.WinLength)
}
