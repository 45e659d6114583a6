package main

import "github.com/AISoldierWYN/Gomoku/internal/engine"

type PlayerColor int

type GameStatus int

const (
	PlayerBlack PlayerColor = iota
	PlayerWhite
)

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusBlackWon
	StatusWhiteWon
	StatusDraw
)

func (p PlayerColor) String() string {
	if p == PlayerWhite {
		return "White"
	}
	return "Black"
}

type GameState struct {
	Board       engine.Board
	ToMove      PlayerColor
	Status      GameStatus
	HasLastMove bool
	LastMove    engine.Move
	Score       int
	Fingerprint uint64
	LastMessage string
	WinningLine []engine.Move
}

func DefaultGameState(settings GameSettings) GameState {
	state := GameState{}
	state.Reset(settings)
	return state
}

func (s *GameState) Reset(settings GameSettings) {
	s.Board = engine.NewBoard(settings.BoardSize)
	s.ToMove = settings.FirstPlayer()
	s.Status = StatusNotStarted
	s.HasLastMove = false
	s.LastMove = engine.Move{Row: -1, Col: -1}
	s.Score = 0
	s.Fingerprint = 0
	s.LastMessage = ""
	s.WinningLine = nil
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Board = s.Board.Clone()
	clone.WinningLine = append([]engine.Move(nil), s.WinningLine...)
	return clone
}

func (s GameState) IsOver() bool {
	return s.Status == StatusBlackWon || s.Status == StatusWhiteWon || s.Status == StatusDraw
}

func otherPlayer(player PlayerColor) PlayerColor {
	if player == PlayerBlack {
		return PlayerWhite
	}
	return PlayerBlack
}

func CellFromPlayer(player PlayerColor) engine.Cell {
	if player == PlayerWhite {
		return engine.CellWhite
	}
	return engine.CellBlack
}

func playerFromCell(cell engine.Cell) PlayerColor {
	if cell == engine.CellWhite {
		return PlayerWhite
	}
	return PlayerBlack
}

func wonStatus(player PlayerColor) GameStatus {
	if player == PlayerBlack {
		return StatusBlackWon
	}
	return StatusWhiteWon
}
