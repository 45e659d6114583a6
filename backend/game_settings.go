package main

import (
	"github.com/AISoldierWYN/Gomoku/internal/config"
	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

func (t PlayerType) String() string {
	if t == PlayerAI {
		return "AI"
	}
	return "Human"
}

type GameSettings struct {
	BoardSize   int        `json:"board_size"`
	WinLength   int        `json:"win_length"`
	BlackType   PlayerType `json:"-"`
	WhiteType   PlayerType `json:"-"`
	BlackStarts bool       `json:"black_starts"`
	BlackDepth  int        `json:"black_depth"`
	WhiteDepth  int        `json:"white_depth"`
}

// DefaultGameSettings is a White human opening against the Black engine.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		BoardSize:   engine.DefaultBoardSize,
		WinLength:   engine.DefaultWinLength,
		BlackType:   PlayerAI,
		WhiteType:   PlayerHuman,
		BlackStarts: false,
		BlackDepth:  engine.DefaultDepth,
		WhiteDepth:  engine.DefaultDepth,
	}
}

func SettingsFromConfig(cfg config.Config) GameSettings {
	settings := DefaultGameSettings()
	settings.BoardSize = cfg.BoardSize
	settings.WinLength = cfg.WinLength
	settings.BlackDepth = cfg.AiDepth
	settings.WhiteDepth = cfg.AiDepth
	if cfg.EngineColor == "white" {
		settings.BlackType = PlayerHuman
		settings.WhiteType = PlayerAI
		settings.BlackStarts = true
	}
	return settings
}

func (s GameSettings) DepthFor(player PlayerColor) int {
	if player == PlayerBlack {
		return s.BlackDepth
	}
	return s.WhiteDepth
}

func (s GameSettings) TypeFor(player PlayerColor) PlayerType {
	if player == PlayerBlack {
		return s.BlackType
	}
	return s.WhiteType
}

func (s GameSettings) FirstPlayer() PlayerColor {
	if s.BlackStarts {
		return PlayerBlack
	}
	return PlayerWhite
}
