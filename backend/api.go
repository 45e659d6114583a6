package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type StatusResponse struct {
	GameID          string            `json:"game_id"`
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	BoardSize       int               `json:"board_size"`
	WinLength       int               `json:"win_length"`
	Status          string            `json:"status"`
	Board           [][]int           `json:"board"`
	History         []historyEntryDTO `json:"history"`
	WinningLine     []engine.Move     `json:"winning_line"`
	Score           int               `json:"score"`
	Fingerprint     string            `json:"fingerprint"`
	AiThinking      bool              `json:"ai_thinking"`
	LastMessage     string            `json:"last_message,omitempty"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

// GameSettingsDTO is both the request and the response shape of game
// settings. Nil fields in a request keep the current value.
type GameSettingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
	BlackDepth  *int   `json:"black_depth,omitempty"`
	WhiteDepth  *int   `json:"white_depth,omitempty"`
	BoardSize   *int   `json:"board_size,omitempty"`
	WinLength   *int   `json:"win_length,omitempty"`
	FirstPlayer *int   `json:"first_player,omitempty"`
}

type apiMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type historyEntryDTO struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Player    int     `json:"player"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAi      bool    `json:"is_ai"`
	Depth     int     `json:"depth"`
	Score     int     `json:"score"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

type scoreResponse struct {
	Score       int    `json:"score"`
	Fingerprint string `json:"fingerprint"`
	Stones      int    `json:"stones"`
	NextPlayer  int    `json:"next_player"`
	BlackDepth  int    `json:"black_depth"`
	WhiteDepth  int    `json:"white_depth"`
}

type hintResponse struct {
	Hint  hintPayload        `json:"hint"`
	Stats engine.SearchStats `json:"stats"`
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	return StatusResponse{
		GameID:          controller.GameID().String(),
		Settings:        controllerSettingsDTO(settings),
		Config:          GetConfig(),
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		BoardSize:       state.Board.Size(),
		WinLength:       settings.WinLength,
		Status:          statusToString(state.Status),
		Board:           boardToSlice(state.Board),
		History:         historyToDTO(controller.History()),
		WinningLine:     append([]engine.Move(nil), state.WinningLine...),
		Score:           state.Score,
		Fingerprint:     formatFingerprint(state.Fingerprint),
		AiThinking:      controller.AiThinking(),
		LastMessage:     state.LastMessage,
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.BlackType = PlayerAI
		settings.WhiteType = PlayerAI
	case "human_vs_human":
		settings.BlackType = PlayerHuman
		settings.WhiteType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 1 {
			settings.BlackType = PlayerHuman
			settings.WhiteType = PlayerAI
		} else {
			settings.BlackType = PlayerAI
			settings.WhiteType = PlayerHuman
		}
	}
	if dto.BlackDepth != nil {
		settings.BlackDepth = *dto.BlackDepth
	}
	if dto.WhiteDepth != nil {
		settings.WhiteDepth = *dto.WhiteDepth
	}
	if dto.BoardSize != nil {
		settings.BoardSize = *dto.BoardSize
	}
	if dto.WinLength != nil {
		settings.WinLength = *dto.WinLength
	}
	if dto.FirstPlayer != nil {
		settings.BlackStarts = *dto.FirstPlayer == 1
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	if settings.BlackType == PlayerAI && settings.WhiteType == PlayerAI {
		mode = "ai_vs_ai"
	} else if settings.BlackType == PlayerHuman && settings.WhiteType == PlayerHuman {
		mode = "human_vs_human"
	}
	humanPlayer := 0
	if settings.BlackType == PlayerHuman {
		humanPlayer = 1
	} else if settings.WhiteType == PlayerHuman {
		humanPlayer = 2
	}
	blackDepth := settings.BlackDepth
	whiteDepth := settings.WhiteDepth
	boardSize := settings.BoardSize
	winLength := settings.WinLength
	first := playerToInt(settings.FirstPlayer())
	return GameSettingsDTO{
		Mode:        mode,
		HumanPlayer: humanPlayer,
		BlackDepth:  &blackDepth,
		WhiteDepth:  &whiteDepth,
		BoardSize:   &boardSize,
		WinLength:   &winLength,
		FirstPlayer: &first,
	}
}

func boardToSlice(board engine.Board) [][]int {
	size := board.Size()
	rows := make([][]int, size)
	for row := 0; row < size; row++ {
		rows[row] = make([]int, size)
		for col := 0; col < size; col++ {
			cell, _ := board.Get(row, col)
			rows[row][col] = cellToInt(cell)
		}
	}
	return rows
}

func cellToInt(cell engine.Cell) int {
	switch cell {
	case engine.CellBlack:
		return 1
	case engine.CellWhite:
		return 2
	default:
		return 0
	}
}

func playerToInt(player PlayerColor) int {
	if player == PlayerBlack {
		return 1
	}
	return 2
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Row:       entry.Move.Row,
		Col:       entry.Move.Col,
		Player:    playerToInt(entry.Player),
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		Depth:     entry.Depth,
		Score:     entry.Score,
	}
}

func formatFingerprint(hash uint64) string {
	return fmt.Sprintf("0x%016x", hash)
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
