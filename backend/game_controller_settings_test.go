package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

func startedController(t *testing.T, settings GameSettings) *GameController {
	t.Helper()
	controller, err := NewGameController(settings)
	require.NoError(t, err)
	require.NoError(t, controller.StartGame(settings))
	return controller
}

func applyHuman(t *testing.T, controller *GameController, mv engine.Move) {
	t.Helper()
	applied, reason := controller.ApplyHumanMove(mv)
	require.True(t, applied, "move %s: %s", mv, reason)
}

func TestUpdateSettingsSwitchToAIVsAIKeepsBoardAndContinuesGame(t *testing.T) {
	settings := humanSettings(15)
	settings.BlackDepth = 1
	settings.WhiteDepth = 1
	controller := startedController(t, settings)

	applyHuman(t, controller, engine.Move{Row: 7, Col: 7})
	applyHuman(t, controller, engine.Move{Row: 7, Col: 8})
	before := controller.State()
	beforeID := controller.GameID()

	updated := controller.Settings()
	updated.BlackType = PlayerAI
	updated.WhiteType = PlayerAI
	require.NoError(t, controller.UpdateSettings(updated, false))

	after := controller.State()
	assert.True(t, after.Board.Equal(before.Board), "stones survive a player type switch")
	assert.Equal(t, before.Fingerprint, after.Fingerprint)
	assert.Equal(t, beforeID, controller.GameID(), "switching player types keeps the game")
	got := controller.Settings()
	assert.Equal(t, PlayerAI, got.BlackType)
	assert.Equal(t, PlayerAI, got.WhiteType)
	applied, _ := controller.ApplyHumanMove(engine.Move{Row: 0, Col: 0})
	assert.False(t, applied, "human moves are refused in ai_vs_ai")

	tickUntil(t, controller.Tick, func() bool { return controller.History().Size() > 2 })
	entry, _ := controller.LatestHistoryEntry()
	assert.True(t, entry.IsAi)
	assert.Equal(t, PlayerBlack, entry.Player)
	assert.Equal(t, 1, entry.Depth)
}

func TestUpdateSettingsDepthKeepsGame(t *testing.T) {
	controller := startedController(t, humanSettings(15))
	applyHuman(t, controller, engine.Move{Row: 7, Col: 7})

	updated := controller.Settings()
	updated.BlackDepth = 3
	updated.WhiteDepth = 0
	require.NoError(t, controller.UpdateSettings(updated, false))
	got := controller.Settings()
	assert.Equal(t, 3, got.BlackDepth)
	assert.Equal(t, 0, got.WhiteDepth)
	assert.Equal(t, 1, controller.History().Size(), "depth change keeps the game")

	updated.BlackDepth = -1
	assert.Error(t, controller.UpdateSettings(updated, false))
	assert.Equal(t, 3, controller.Settings().BlackDepth, "rejected update keeps the previous depth")
}

func TestUpdateSettingsGeometryResets(t *testing.T) {
	controller := startedController(t, humanSettings(15))
	applyHuman(t, controller, engine.Move{Row: 7, Col: 7})
	beforeID := controller.GameID()

	updated := controller.Settings()
	updated.BoardSize = 9
	require.NoError(t, controller.UpdateSettings(updated, false))

	state := controller.State()
	assert.Equal(t, 9, state.Board.Size())
	assert.Zero(t, controller.History().Size())
	assert.Equal(t, StatusNotStarted, state.Status)
	assert.NotEqual(t, beforeID, controller.GameID(), "geometry change starts a new game")
}

func TestControllerHintDoesNotTouchGame(t *testing.T) {
	controller := startedController(t, humanSettings(15))
	applyHuman(t, controller, engine.Move{Row: 7, Col: 7})
	before := controller.State()

	res, err := controller.Hint(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, engine.CellWhite, res.Color)

	after := controller.State()
	assert.Equal(t, before.Fingerprint, after.Fingerprint)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, 1, controller.History().Size())
}

func TestHintFollowsSessionDepth(t *testing.T) {
	settings := humanSettings(15)
	settings.BlackDepth = 2
	settings.WhiteDepth = 2
	controller := startedController(t, settings)
	applyHuman(t, controller, engine.Move{Row: 7, Col: 7})

	updated := controller.Settings()
	updated.BlackDepth = 1
	require.NoError(t, controller.UpdateSettings(updated, false))

	hints := make(chan hintPayload, 8)
	controller.SetHintPublisher(func() bool { return true }, func(p hintPayload) { hints <- p })

	var got hintPayload
	require.Eventually(t, func() bool {
		controller.Tick()
		select {
		case got = <-hints:
		default:
		}
		return got.Best != nil
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, got.Depth)
}
