package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type trainer struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	logger       *slog.Logger
	apiAddr      string

	depths       []int
	rounds       int
	openingCount int
	openingPlies int
	gameTimeout  time.Duration
	eloK         float64
	openingSeed  int64
	resetOnExit  bool

	statusMu  sync.RWMutex
	status    trainerStatus
	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

type statusResponse struct {
	Status    string            `json:"status"`
	Winner    int               `json:"winner"`
	History   []json.RawMessage `json:"history"`
	BoardSize int               `json:"board_size"`
	Score     int               `json:"score"`
}

type trainerStatus struct {
	Running        bool   `json:"running"`
	RunID          string `json:"run_id,omitempty"`
	Phase          string `json:"phase"`
	Message        string `json:"message"`
	StartedAt      string `json:"started_at"`
	UpdatedAt      string `json:"updated_at"`
	Round          int    `json:"round"`
	GamesPlayed    int    `json:"games_played"`
	RoundGames     int    `json:"round_games"`
	EtaSeconds     int    `json:"eta_seconds"`
	BlackWins      int    `json:"black_wins"`
	WhiteWins      int    `json:"white_wins"`
	Draws          int    `json:"draws"`
	OpeningsPerRun int    `json:"openings_per_run"`

	CurrentMatch *trainerMatch     `json:"current_match,omitempty"`
	Standings    []trainerStanding `json:"standings,omitempty"`
}

type trainerMatch struct {
	BlackDepth   int `json:"black_depth"`
	WhiteDepth   int `json:"white_depth"`
	OpeningIndex int `json:"opening_index"`
}

type trainerStanding struct {
	Depth  int     `json:"depth"`
	Elo    float64 `json:"elo"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Draws  int     `json:"draws"`
}

type openingMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type contender struct {
	Depth  int
	Elo    float64
	Wins   int
	Losses int
	Draws  int
}

type trainerOptions struct {
	logFile      string
	backendURL   string
	apiAddr      string
	pollInterval time.Duration
	depths       string
	rounds       int
	openings     int
	openingPlies int
	gameTimeout  time.Duration
	eloK         float64
	openingSeed  int64
	resetOnExit  bool
	autostart    bool
}

var opts trainerOptions

// flagEnv maps flags to the environment variables that set them when the
// flag is not given on the command line.
var flagEnv = map[string]string{
	"log-file":      "TRAINER_LOG_FILE",
	"backend":       "BACKEND_URL",
	"addr":          "TRAINER_API_ADDR",
	"poll-interval": "POLL_INTERVAL",
	"depths":        "LADDER_DEPTHS",
	"rounds":        "LADDER_ROUNDS",
	"openings":      "LADDER_OPENINGS",
	"opening-plies": "LADDER_OPENING_PLIES",
	"game-timeout":  "LADDER_GAME_TIMEOUT",
	"elo-k":         "LADDER_ELO_K",
	"opening-seed":  "LADDER_OPENING_SEED",
	"reset-on-exit": "LADDER_RESET_ON_EXIT",
	"autostart":     "TRAINER_AUTOSTART",
}

var rootCmd = &cobra.Command{
	Use:          "ai-trainer",
	Short:        "Rate engine search depths against each other through the game backend",
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyEnv(cmd, flagEnv)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), opts)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.logFile, "log-file", "/logs/AITrainer.log", "log file, written next to stdout")
	f.StringVar(&opts.backendURL, "backend", "http://backend:8080", "game backend base URL")
	f.StringVar(&opts.apiAddr, "addr", ":8090", "status API listen address")
	f.DurationVar(&opts.pollInterval, "poll-interval", 500*time.Millisecond, "backend status poll interval")
	f.StringVar(&opts.depths, "depths", "0,1,2,3", "comma separated search depths to rate")
	f.IntVar(&opts.rounds, "rounds", 1, "rounds over the full pairing")
	f.IntVar(&opts.openings, "openings", 4, "openings per pairing")
	f.IntVar(&opts.openingPlies, "opening-plies", 4, "seeded stones per opening")
	f.DurationVar(&opts.gameTimeout, "game-timeout", 10*time.Minute, "time limit for a single game")
	f.Float64Var(&opts.eloK, "elo-k", 20, "Elo K factor")
	f.Int64Var(&opts.openingSeed, "opening-seed", 41, "seed for the opening suite")
	f.BoolVar(&opts.resetOnExit, "reset-on-exit", true, "stop the backend game when a ladder ends")
	f.BoolVar(&opts.autostart, "autostart", false, "start a ladder right away")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyEnv sets every flag left at its default from its environment
// variable, if that is set.
func applyEnv(cmd *cobra.Command, env map[string]string) error {
	for name, key := range env {
		if cmd.Flags().Changed(name) {
			continue
		}
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func newTrainer(o trainerOptions, logger *slog.Logger) (*trainer, error) {
	depths, err := parseDepths(o.depths)
	if err != nil {
		return nil, fmt.Errorf("depths: %w", err)
	}
	if o.rounds < 1 || o.openings < 1 || o.openingPlies < 0 {
		return nil, errors.New("rounds and openings must be positive, opening plies non-negative")
	}
	if o.pollInterval <= 0 || o.gameTimeout <= 0 {
		return nil, errors.New("poll interval and game timeout must be positive")
	}
	eloK := o.eloK
	if eloK <= 0 {
		eloK = 20
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return &trainer{
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(o.backendURL, "/"),
		pollInterval: o.pollInterval,
		logger:       logger,
		apiAddr:      o.apiAddr,
		depths:       depths,
		rounds:       o.rounds,
		openingCount: o.openings,
		openingPlies: o.openingPlies,
		gameTimeout:  o.gameTimeout,
		eloK:         eloK,
		openingSeed:  o.openingSeed,
		resetOnExit:  o.resetOnExit,
		status: trainerStatus{
			Phase:     "idle",
			Message:   "service ready",
			StartedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

func run(ctx context.Context, o trainerOptions) error {
	logger, closeLog, err := buildLogger(o.logFile)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	t, err := newTrainer(o, logger)
	if err != nil {
		logger.Error("[trainer] bad options", "error", err)
		return err
	}
	logger.Info("[trainer] service started", "backend", t.baseURL, "depths", t.depths, "poll_interval", t.pollInterval)

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	server := &http.Server{Addr: t.apiAddr, Handler: t.routes(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("[trainer] api server error", "error", err)
		}
	}()

	if o.autostart {
		if err := t.startTraining(); err != nil {
			logger.Warn("[trainer] autostart failed", "error", err)
		}
	}

	<-sigCtx.Done()
	_ = t.stopTraining("shutdown")
	logger.Info("[trainer] service stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (t *trainer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/trainer", func(r chi.Router) {
		r.Get("/health", t.handleHealth)
		r.Get("/status", t.handleStatus)
		r.Post("/start", t.handleStart)
		r.Post("/stop", t.handleStop)
	})
	return r
}

func (t *trainer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
}

func (t *trainer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, t.getStatus())
}

func (t *trainer) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := t.startTraining(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, t.getStatus())
}

func (t *trainer) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := t.stopTraining("requested via api"); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, t.getStatus())
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *trainer) startTraining() error {
	t.jobMu.Lock()
	defer t.jobMu.Unlock()
	if t.jobCancel != nil {
		return errors.New("ladder already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.jobCancel = cancel
	t.jobDone = done
	runID := uuid.NewString()
	t.updateStatus(func(s *trainerStatus) {
		*s = trainerStatus{
			Running:        true,
			RunID:          runID,
			Phase:          "starting",
			Message:        "waiting for backend",
			StartedAt:      time.Now().UTC().Format(time.RFC3339),
			OpeningsPerRun: t.openingCount,
		}
	})
	go func() {
		defer close(done)
		logger := t.logger.With("run", runID)
		err := t.waitBackendReady(ctx)
		if err == nil {
			err = t.runLadder(ctx, logger)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("[trainer] ladder failed", "error", err)
			t.updateStatus(func(s *trainerStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Running = false
			s.CurrentMatch = nil
			if s.Phase != "error" {
				s.Phase = "idle"
				s.Message = "service ready"
			}
		})
		t.jobMu.Lock()
		t.jobCancel = nil
		t.jobDone = nil
		t.jobMu.Unlock()
	}()
	return nil
}

func (t *trainer) stopTraining(reason string) error {
	t.jobMu.Lock()
	cancel := t.jobCancel
	done := t.jobDone
	t.jobMu.Unlock()
	if cancel == nil {
		return errors.New("no running ladder")
	}
	t.logger.Info("[trainer] stopping ladder", "reason", reason)
	cancel()
	if done != nil {
		<-done
	}
	return nil
}

// runLadder plays every pair of depths on every opening, once with each
// depth as Black, and rates the depths with Elo.
func (t *trainer) runLadder(ctx context.Context, logger *slog.Logger) error {
	boardSize := 15
	if st, err := t.fetchStatus(); err == nil && st.BoardSize > 0 {
		boardSize = st.BoardSize
	}
	openings := buildOpeningSuite(boardSize, t.openingCount, t.openingPlies, t.openingSeed)
	contenders := make([]contender, len(t.depths))
	for i, d := range t.depths {
		contenders[i] = contender{Depth: d, Elo: 1500}
	}
	pairs := len(contenders) * (len(contenders) - 1) / 2
	roundGames := pairs * len(openings) * 2

	if t.resetOnExit {
		defer func() {
			if err := t.postJSON("/api/stop", map[string]any{}, nil); err != nil {
				logger.Warn("[trainer] failed to reset backend", "error", err)
			}
		}()
	}

	t.updateStatus(func(s *trainerStatus) {
		s.Phase = "running"
		s.Message = "depth ladder running"
		s.RoundGames = roundGames
		s.Standings = toStandings(contenders)
	})
	logger.Info("[trainer] ladder started", "depths", t.depths, "openings", len(openings), "board", boardSize, "round_games", roundGames)

	games := 0
	for round := 1; t.rounds <= 0 || round <= t.rounds; round++ {
		roundStart := time.Now()
		played := 0
		t.updateStatus(func(s *trainerStatus) { s.Round = round })
		for i := 0; i < len(contenders); i++ {
			for j := i + 1; j < len(contenders); j++ {
				for openingIdx, opening := range openings {
					for _, iBlack := range []bool{true, false} {
						if ctx.Err() != nil {
							return ctx.Err()
						}
						black, white := &contenders[i], &contenders[j]
						if !iBlack {
							black, white = white, black
						}
						t.updateStatus(func(s *trainerStatus) {
							s.CurrentMatch = &trainerMatch{BlackDepth: black.Depth, WhiteDepth: white.Depth, OpeningIndex: openingIdx}
						})
						status, err := t.playGame(ctx, black.Depth, white.Depth, opening)
						if err != nil {
							return err
						}
						result := resultForBlack(status.Winner)
						updateElo(black, white, result, t.eloK)
						recordResult(black, white, result)
						games++
						played++

						standings := toStandings(contenders)
						t.updateStatus(func(s *trainerStatus) {
							s.GamesPlayed = games
							s.Standings = standings
							switch status.Winner {
							case 1:
								s.BlackWins++
							case 2:
								s.WhiteWins++
							default:
								s.Draws++
							}
							avg := time.Since(roundStart).Seconds() / float64(played)
							s.EtaSeconds = int(math.Round(avg * float64(max(roundGames-played, 0))))
						})
						logger.Info("[trainer] game finished",
							"round", round,
							"game", games,
							"black_depth", black.Depth,
							"white_depth", white.Depth,
							"opening", openingIdx,
							"result", status.Status,
							"stones", len(status.History),
							"score", status.Score,
						)
					}
				}
			}
		}
		logger.Info("[trainer] round finished", "round", round, "standings", toStandings(contenders))
	}
	return nil
}

func (t *trainer) playGame(ctx context.Context, blackDepth, whiteDepth int, opening []openingMove) (statusResponse, error) {
	if err := t.startSeededGame(blackDepth, whiteDepth, opening); err != nil {
		return statusResponse{}, err
	}
	deadline := time.Now().Add(t.gameTimeout)
	for {
		if ctx.Err() != nil {
			return statusResponse{}, ctx.Err()
		}
		status, err := t.fetchStatus()
		if err != nil {
			return statusResponse{}, err
		}
		if status.Status != "running" {
			return status, nil
		}
		if t.gameTimeout > 0 && time.Now().After(deadline) {
			_ = t.postJSON("/api/stop", map[string]any{}, nil)
			return statusResponse{}, fmt.Errorf("game timeout after %s", t.gameTimeout)
		}
		if !sleepWithContext(ctx, t.pollInterval) {
			return statusResponse{}, ctx.Err()
		}
	}
}

// startSeededGame plays the opening as two humans, then hands both colors to
// the engine at their ladder depths.
func (t *trainer) startSeededGame(blackDepth, whiteDepth int, opening []openingMove) error {
	if err := t.postJSON("/api/start", map[string]any{
		"settings": map[string]any{
			"mode":         "human_vs_human",
			"first_player": 1,
		},
	}, nil); err != nil {
		return err
	}
	for _, move := range opening {
		if err := t.postJSON("/api/move", move, nil); err != nil {
			return err
		}
	}
	return t.postJSON("/api/settings", map[string]any{
		"settings": map[string]any{
			"mode":        "ai_vs_ai",
			"black_depth": blackDepth,
			"white_depth": whiteDepth,
		},
	}, nil)
}

func (t *trainer) fetchStatus() (statusResponse, error) {
	var status statusResponse
	if err := t.getJSON("/api/status", &status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}

// buildOpeningSuite draws count distinct-cell openings near the center. The
// same seed always gives the same suite.
func buildOpeningSuite(boardSize, count, plies int, seed int64) [][]openingMove {
	rng := rand.New(rand.NewSource(int64(boardSize*97+plies*13) + seed))
	center := boardSize / 2
	offsets := []openingMove{
		{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}, {2, 0}, {0, 2},
	}
	if plies > len(offsets) {
		plies = len(offsets)
	}
	suite := make([][]openingMove, 0, count)
	for i := 0; i < count; i++ {
		used := map[openingMove]bool{}
		opening := make([]openingMove, 0, plies)
		for len(opening) < plies {
			off := offsets[rng.Intn(len(offsets))]
			move := openingMove{Row: center + off.Row, Col: center + off.Col}
			if move.Row < 0 || move.Col < 0 || move.Row >= boardSize || move.Col >= boardSize || used[move] {
				continue
			}
			used[move] = true
			opening = append(opening, move)
		}
		suite = append(suite, opening)
	}
	return suite
}

func resultForBlack(winner int) float64 {
	switch winner {
	case 1:
		return 1
	case 2:
		return 0
	default:
		return 0.5
	}
}

func recordResult(black, white *contender, resultForBlack float64) {
	switch resultForBlack {
	case 1:
		black.Wins++
		white.Losses++
	case 0:
		black.Losses++
		white.Wins++
	default:
		black.Draws++
		white.Draws++
	}
}

func toStandings(list []contender) []trainerStanding {
	out := make([]trainerStanding, 0, len(list))
	for _, c := range list {
		out = append(out, trainerStanding{Depth: c.Depth, Elo: math.Round(c.Elo*10) / 10, Wins: c.Wins, Losses: c.Losses, Draws: c.Draws})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Elo > out[j].Elo })
	return out
}

func updateElo(a *contender, b *contender, resultForA float64, k float64) {
	expA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	expB := 1.0 / (1.0 + math.Pow(10, (a.Elo-b.Elo)/400.0))
	a.Elo += k * (resultForA - expA)
	b.Elo += k * ((1.0 - resultForA) - expB)
}

func parseDepths(raw string) ([]int, error) {
	var depths []int
	seen := map[int]bool{}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		d, err := strconv.Atoi(field)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid depth %q", field)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		depths = append(depths, d)
	}
	if len(depths) < 2 {
		return nil, fmt.Errorf("need at least two depths, got %q", raw)
	}
	return depths, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func buildLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, f), nil))
	return logger, func() { _ = f.Close() }, nil
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := t.getJSON("/api/ping", &map[string]bool{}); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, time.Second) {
			return ctx.Err()
		}
	}
	return errors.New("backend not ready after 60s")
}

func (t *trainer) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
