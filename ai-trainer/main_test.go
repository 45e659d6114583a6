package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepths(t *testing.T) {
	depths, err := parseDepths(" 0, 2,2 ,4")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, depths)

	_, err = parseDepths("3")
	assert.Error(t, err)
	_, err = parseDepths("1,-1")
	assert.Error(t, err)
	_, err = parseDepths("1,x")
	assert.Error(t, err)
}

func TestBuildOpeningSuiteIsDeterministic(t *testing.T) {
	a := buildOpeningSuite(15, 5, 4, 41)
	b := buildOpeningSuite(15, 5, 4, 41)
	require.Equal(t, a, b)
	require.Len(t, a, 5)
	for _, opening := range a {
		require.Len(t, opening, 4)
		seen := map[openingMove]bool{}
		for _, mv := range opening {
			assert.False(t, seen[mv], "duplicate cell %v", mv)
			seen[mv] = true
			assert.InDelta(t, 7, mv.Row, 2)
			assert.InDelta(t, 7, mv.Col, 2)
		}
	}
}

func TestUpdateEloConservesPoints(t *testing.T) {
	a := contender{Depth: 1, Elo: 1500}
	b := contender{Depth: 2, Elo: 1500}
	updateElo(&a, &b, 1, 20)
	assert.InDelta(t, 1510, a.Elo, 1e-9)
	assert.InDelta(t, 1490, b.Elo, 1e-9)
	assert.InDelta(t, 3000, a.Elo+b.Elo, 1e-9)

	recordResult(&a, &b, 0.5)
	recordResult(&a, &b, 0)
	assert.Equal(t, 1, a.Draws)
	assert.Equal(t, 1, a.Losses)
	assert.Equal(t, 1, b.Wins)
}

func TestToStandingsSortsByElo(t *testing.T) {
	standings := toStandings([]contender{{Depth: 0, Elo: 1400}, {Depth: 3, Elo: 1612.34}, {Depth: 1, Elo: 1500}})
	require.Len(t, standings, 3)
	assert.Equal(t, []int{3, 1, 0}, []int{standings[0].Depth, standings[1].Depth, standings[2].Depth})
	assert.Equal(t, 1612.3, standings[0].Elo)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend finishes every game as soon as the engine takes over.
type fakeBackend struct {
	mu       sync.Mutex
	moves    int
	settings []map[string]any
	status   string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/start", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.status = "running"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.status = "not_started"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("/api/move", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.moves++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings map[string]any `json:"settings"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.settings = append(f.settings, payload.Settings)
		f.status = "black_won"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		winner := 0
		if f.status == "black_won" {
			winner = 1
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: f.status, Winner: winner, BoardSize: 15})
	})
	return mux
}

func TestRunLadderAgainstFakeBackend(t *testing.T) {
	backend := &fakeBackend{status: "not_started"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	tr := &trainer{
		client:       srv.Client(),
		baseURL:      srv.URL,
		pollInterval: time.Millisecond,
		logger:       discardLogger(),
		depths:       []int{0, 1, 2},
		rounds:       1,
		openingCount: 2,
		openingPlies: 3,
		gameTimeout:  time.Second,
		eloK:         20,
		openingSeed:  1,
		resetOnExit:  true,
	}
	require.NoError(t, tr.runLadder(t.Context(), tr.logger))

	status := tr.getStatus()
	// 3 pairs, 2 openings, both color assignments.
	assert.Equal(t, 12, status.GamesPlayed)
	assert.Equal(t, 12, status.BlackWins)
	assert.Equal(t, 12*3, backend.moves)
	require.Len(t, backend.settings, 12)
	assert.Equal(t, "ai_vs_ai", backend.settings[0]["mode"])
	assert.Equal(t, "not_started", backend.status)

	// Black always wins, so every depth splits its games.
	for _, s := range status.Standings {
		assert.Equal(t, 4, s.Wins)
		assert.Equal(t, 4, s.Losses)
	}
}

func TestApplyEnvFillsUnsetFlags(t *testing.T) {
	var depths string
	var rounds int
	var poll time.Duration
	cmd := &cobra.Command{Use: "ladder"}
	cmd.Flags().StringVar(&depths, "depths", "0,1", "")
	cmd.Flags().IntVar(&rounds, "rounds", 1, "")
	cmd.Flags().DurationVar(&poll, "poll-interval", time.Second, "")
	env := map[string]string{"depths": "LADDER_DEPTHS", "rounds": "LADDER_ROUNDS", "poll-interval": "POLL_INTERVAL"}

	t.Setenv("LADDER_DEPTHS", "1,3")
	t.Setenv("LADDER_ROUNDS", "7")
	t.Setenv("POLL_INTERVAL", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--rounds", "5"}))
	require.NoError(t, applyEnv(cmd, env))

	assert.Equal(t, "1,3", depths)
	assert.Equal(t, 5, rounds, "an explicit flag wins over the environment")
	assert.Equal(t, time.Second, poll)
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	var rounds int
	cmd := &cobra.Command{Use: "ladder"}
	cmd.Flags().IntVar(&rounds, "rounds", 1, "")
	t.Setenv("LADDER_ROUNDS", "many")
	require.NoError(t, cmd.Flags().Parse(nil))

	err := applyEnv(cmd, map[string]string{"rounds": "LADDER_ROUNDS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LADDER_ROUNDS")
}

func TestNewTrainerValidatesOptions(t *testing.T) {
	base := trainerOptions{
		backendURL:   "http://backend:8080/",
		pollInterval: time.Millisecond,
		depths:       "2,0",
		rounds:       1,
		openings:     2,
		openingPlies: 4,
		gameTimeout:  time.Second,
		eloK:         -1,
	}
	tr, err := newTrainer(base, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8080", tr.baseURL)
	assert.Equal(t, 20.0, tr.eloK)
	assert.Equal(t, "idle", tr.getStatus().Phase)

	bad := base
	bad.depths = "1"
	_, err = newTrainer(bad, discardLogger())
	assert.Error(t, err)

	bad = base
	bad.openings = 0
	_, err = newTrainer(bad, discardLogger())
	assert.Error(t, err)
}

func TestTrainerRoutes(t *testing.T) {
	tr, err := newTrainer(trainerOptions{
		backendURL:   "http://127.0.0.1:1",
		pollInterval: time.Millisecond,
		depths:       "0,1",
		rounds:       1,
		openings:     1,
		gameTimeout:  time.Second,
		eloK:         20,
	}, discardLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(tr.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/trainer/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, false, health["running"])

	resp, err = http.Get(srv.URL + "/api/trainer/status")
	require.NoError(t, err)
	var status trainerStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, "idle", status.Phase)

	resp, err = http.Get(srv.URL + "/api/trainer/start")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/trainer/stop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
