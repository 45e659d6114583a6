package main

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type GameController struct {
	mu            sync.Mutex
	game          Game
	hintEnabled   func() bool
	hintPublisher func(hintPayload)
}

func NewGameController(settings GameSettings) (*GameController, error) {
	game, err := NewGame(settings)
	if err != nil {
		return nil, err
	}
	return &GameController{game: game}, nil
}

func (gc *GameController) SetHintPublisher(enabled func() bool, publisher func(hintPayload)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.hintEnabled = enabled
	gc.hintPublisher = publisher
}

func (gc *GameController) OnCellClicked(row, col int) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.SubmitHumanMove(engine.Move{Row: row, Col: col})
}

func (gc *GameController) ApplyHumanMove(move engine.Move) (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.game.state.Status == StatusRunning && !gc.game.CurrentPlayerIsHuman() {
		return false, "not human turn"
	}
	return gc.game.TryApplyMove(move)
}

func (gc *GameController) Undo() (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Undo()
}

func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	hintEnabled := false
	if gc.hintEnabled != nil {
		hintEnabled = gc.hintEnabled()
	}
	return gc.game.Tick(hintEnabled, gc.hintPublisher)
}

func (gc *GameController) Hint(ctx context.Context, depth int) (engine.SearchResult, error) {
	gc.mu.Lock()
	snapshot := gc.game.engine.Clone()
	toMove := gc.game.state.ToMove
	gc.mu.Unlock()
	return runSearch(ctx, snapshot, toMove, depth, "hint")
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) GameID() uuid.UUID {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.ID()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Settings()
}

func (gc *GameController) History() MoveHistory {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *GameController) CurrentTurnStartedAtMs() int64 {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.TurnStartedAtMs()
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History().Last()
}

func (gc *GameController) AiThinking() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.AiThinking()
}

func (gc *GameController) Reset(settings GameSettings) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Reset(settings)
}

func (gc *GameController) StartGame(settings GameSettings) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.game.Reset(settings); err != nil {
		return err
	}
	gc.game.Start()
	return nil
}

// UpdateSettings applies player types and depths to the running game. A
// board geometry change needs a reset.
func (gc *GameController) UpdateSettings(update GameSettings, reset bool) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	current := gc.game.Settings()
	if reset || update.BoardSize != current.BoardSize || update.WinLength != current.WinLength {
		return gc.game.Reset(update)
	}
	if err := gc.game.SetDepths(update.BlackDepth, update.WhiteDepth); err != nil {
		return err
	}
	gc.game.settings.BlackStarts = update.BlackStarts
	if update.BlackType != current.BlackType || update.WhiteType != current.WhiteType {
		gc.game.SetPlayerTypes(update.BlackType, update.WhiteType)
	}
	return nil
}
