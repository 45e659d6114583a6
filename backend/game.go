package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type Game struct {
	id          uuid.UUID
	settings    GameSettings
	rules       Rules
	engine      *engine.Engine
	state       GameState
	history     MoveHistory
	blackPlayer IPlayer
	whitePlayer IPlayer
	hintAI      *AIPlayer
	hintHash    uint64
	turnStart   time.Time
}

func NewGame(settings GameSettings) (Game, error) {
	g := Game{}
	if err := g.Reset(settings); err != nil {
		return Game{}, err
	}
	return g, nil
}

func (g *Game) Reset(settings GameSettings) error {
	eng, err := engine.New(engine.Options{
		BoardSize: settings.BoardSize,
		WinLength: settings.WinLength,
		Depth:     settings.BlackDepth,
		Color:     engine.CellBlack,
	})
	if err != nil {
		return err
	}
	if settings.BlackDepth < 0 || settings.WhiteDepth < 0 {
		return fmt.Errorf("%w: black %d, white %d", engine.ErrInvalidDepth, settings.BlackDepth, settings.WhiteDepth)
	}
	g.stopHint(nil)
	g.stopAIPlayers()
	g.id = uuid.New()
	sharedCache().NextGeneration()
	g.settings = settings
	g.rules = NewRules(settings)
	g.engine = eng
	g.state.Reset(settings)
	g.history.Clear()
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
	return nil
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
		g.stopHint(nil)
	}
}

func (g *Game) ID() uuid.UUID {
	return g.id
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) History() MoveHistory {
	return MoveHistory{entries: g.history.All()}
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

func (g *Game) TryApplyMove(move engine.Move) (bool, string) {
	return g.applyMove(move, 0)
}

func (g *Game) applyMove(move engine.Move, depth int) (bool, string) {
	ok, reason := g.rules.IsLegalDefault(g.state, move)
	if !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, g.state.LastMessage
	}
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()
	mover := g.state.ToMove
	won, err := g.engine.Place(move.Row, move.Col, CellFromPlayer(mover))
	if err != nil {
		g.state.LastMessage = "Illegal move: " + err.Error()
		return false, g.state.LastMessage
	}
	g.stopHint(nil)
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	g.state.LastMessage = ""
	g.syncState()
	g.history.Push(HistoryEntry{
		Move:      move,
		Player:    mover,
		ElapsedMs: elapsedMs,
		IsAi:      isAiMove,
		Depth:     depth,
		Score:     g.state.Score,
	})
	recordMove(mover, isAiMove)
	g.logMovePlayed(move, mover, elapsedMs, isAiMove)

	switch {
	case won:
		g.state.Status = wonStatus(mover)
		if line, ok := g.engine.WinningLine(); ok {
			g.state.WinningLine = line
		}
		g.logGameOver()
	case g.rules.IsDraw(g.state.Board):
		g.state.Status = StatusDraw
		g.logGameOver()
	default:
		g.state.ToMove = otherPlayer(mover)
	}
	g.turnStart = time.Now()
	return true, ""
}

// Undo takes back the last move. Against the engine it keeps undoing until
// a human is to move again.
func (g *Game) Undo() (bool, string) {
	if g.state.Status == StatusNotStarted {
		return false, "game not running"
	}
	if g.history.Size() == 0 {
		return false, "nothing to undo"
	}
	g.stopHint(nil)
	g.stopAIPlayers()
	if !g.undoOne() {
		return false, "nothing to undo"
	}
	if g.hasHuman() {
		for g.history.Size() > 0 && !g.currentPlayer().IsHuman() {
			if !g.undoOne() {
				break
			}
		}
	}
	g.state.Status = StatusRunning
	g.state.WinningLine = nil
	g.state.LastMessage = ""
	g.turnStart = time.Now()
	return true, ""
}

func (g *Game) undoOne() bool {
	entry, ok := g.history.Pop()
	if !ok {
		return false
	}
	if _, err := g.engine.Undo(); err != nil {
		slog.Error("[game] engine undo failed", "game", g.id, "error", err)
		return false
	}
	g.syncState()
	g.state.ToMove = entry.Player
	return true
}

func (g *Game) Tick(hintEnabled bool, hintSink func(hintPayload)) bool {
	if g.state.Status != StatusRunning {
		g.stopHint(hintSink)
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		g.stopHint(hintSink)
		return false
	}
	if human, ok := player.(*HumanPlayer); ok {
		if hintEnabled && hintSink != nil {
			g.startHint(hintSink)
		} else {
			g.stopHint(hintSink)
		}
		if move, ok := human.Take(); ok {
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		return false
	}
	g.stopHint(hintSink)
	ai, ok := player.(*AIPlayer)
	if !ok {
		return false
	}
	if ai.HasMoveReady() {
		res, err := ai.TakeMove()
		if err != nil {
			slog.Warn("[ai] search failed", "game", g.id, "error", err)
			return false
		}
		applied, reason := g.applyMove(res.Move, res.Depth)
		if !applied {
			slog.Warn("[ai] engine move rejected", "game", g.id, "move", res.Move.String(), "reason", reason)
		}
		return applied
	}
	if !ai.IsThinking() {
		ai.StartThinking(g.engine, g.state.ToMove, g.settings.DepthFor(g.state.ToMove), "move", nil)
	}
	return false
}

func (g *Game) SubmitHumanMove(move engine.Move) bool {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return false
	}
	human.Submit(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) AiThinking() bool {
	if ai, ok := g.currentPlayer().(*AIPlayer); ok {
		return ai.IsThinking()
	}
	return false
}

func (g *Game) Score() int {
	return g.engine.CurrentScore()
}

func (g *Game) Fingerprint() uint64 {
	return g.engine.Fingerprint()
}

// SetDepths changes search depth for both colors from the next search on.
func (g *Game) SetDepths(black, white int) error {
	if black < 0 || white < 0 {
		return fmt.Errorf("%w: black %d, white %d", engine.ErrInvalidDepth, black, white)
	}
	g.settings.BlackDepth = black
	g.settings.WhiteDepth = white
	return g.engine.SetDepth(black)
}

func (g *Game) SetPlayerTypes(black, white PlayerType) {
	g.settings.BlackType = black
	g.settings.WhiteType = white
	g.stopAIPlayers()
	g.createPlayers()
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.state.ToMove)
}

func (g *Game) playerForColor(color PlayerColor) IPlayer {
	if color == PlayerBlack {
		return g.blackPlayer
	}
	return g.whitePlayer
}

func (g *Game) hasHuman() bool {
	return g.settings.BlackType == PlayerHuman || g.settings.WhiteType == PlayerHuman
}

func (g *Game) createPlayers() {
	newPlayer := func(t PlayerType) IPlayer {
		if t == PlayerAI {
			return NewAIPlayer()
		}
		return NewHumanPlayer()
	}
	g.blackPlayer = newPlayer(g.settings.BlackType)
	g.whitePlayer = newPlayer(g.settings.WhiteType)
	if g.hintAI == nil {
		g.hintAI = NewAIPlayer()
	}
}

func (g *Game) stopAIPlayers() {
	if ai, ok := g.blackPlayer.(*AIPlayer); ok {
		ai.StopThinking()
	}
	if ai, ok := g.whitePlayer.(*AIPlayer); ok {
		ai.StopThinking()
	}
}

func (g *Game) syncState() {
	g.state.Board = g.engine.Board()
	g.state.Score = g.engine.CurrentScore()
	g.state.Fingerprint = g.engine.Fingerprint()
	if last, ok := g.engine.LastMove(); ok {
		g.state.LastMove = last.Move
		g.state.HasLastMove = true
	} else {
		g.state.LastMove = engine.Move{Row: -1, Col: -1}
		g.state.HasLastMove = false
	}
}

func (g *Game) startHint(sink func(hintPayload)) {
	if g.hintAI == nil {
		g.hintAI = NewAIPlayer()
	}
	key := g.engine.Fingerprint() ^ uint64(g.history.Size())<<1 ^ uint64(g.state.ToMove)
	if g.hintHash == key && (g.hintAI.IsThinking() || g.hintAI.HasMoveReady()) {
		return
	}
	if g.hintAI.IsThinking() {
		g.hintAI.StopThinking()
		return
	}
	g.hintHash = key
	player := g.state.ToMove
	historyLen := g.history.Size()
	fingerprint := g.engine.Fingerprint()
	depth := g.settings.DepthFor(otherPlayer(player))
	g.hintAI.StartThinking(g.engine, player, depth, "hint", func(res engine.SearchResult) {
		sink(hintFromResult(res, player, historyLen, fingerprint))
	})
}

func (g *Game) stopHint(sink func(hintPayload)) {
	g.hintHash = 0
	if g.hintAI != nil {
		g.hintAI.StopThinking()
	}
	if sink != nil {
		sink(hintPayload{Mode: "best_move", Active: false})
	}
}

func (g *Game) logMatchup() {
	slog.Info("[game] new game",
		"game", g.id,
		"matchup", fmt.Sprintf("White (%s) vs Black (%s)", g.settings.WhiteType, g.settings.BlackType),
		"board", g.settings.BoardSize,
		"first", g.settings.FirstPlayer().String(),
	)
}

func (g *Game) logMovePlayed(move engine.Move, player PlayerColor, elapsedMs float64, isAiMove bool) {
	slog.Debug("[game] move",
		"game", g.id,
		"n", g.history.Size(),
		"player", player.String(),
		"move", move.String(),
		"ai", isAiMove,
		"elapsed_ms", elapsedMs,
		"score", g.state.Score,
	)
}

func (g *Game) logGameOver() {
	recordGameOver(g.state.Status)
	slog.Info("[game] game over",
		"game", g.id,
		"result", statusToString(g.state.Status),
		"moves", g.history.Size(),
		"score", g.state.Score,
	)
}
