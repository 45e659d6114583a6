package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AISoldierWYN/Gomoku/internal/config"
	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

var version = "dev"

var (
	configPath string
	logLevel   string

	serveAddr string

	playPvP        bool
	playDepth      int
	playEngineSide string

	analyzeMoves string
	analyzeFirst string
	analyzeDepth int

	rootCmd = &cobra.Command{
		Use:   "gomoku",
		Short: "Five-in-a-row engine with an HTTP/WebSocket backend and a terminal board",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configStore.Load(configPath)
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if logLevel != "" {
				level = logLevel
			}
			setupLogging(level)
			return nil
		},
		SilenceUsage: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE:  runServe,
	}
	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE:  runPlay,
	}
	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Print the score and the engine's move for a sequence of moves",
		RunE:  runAnalyze,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "gomoku.yaml", "config file, created with defaults if missing")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to the configured addr)")

	playCmd.Flags().BoolVar(&playPvP, "pvp", false, "two humans on one terminal")
	playCmd.Flags().IntVar(&playDepth, "depth", -1, "engine search depth (defaults to the configured ai_depth)")
	playCmd.Flags().StringVar(&playEngineSide, "engine", "", "engine color: black or white")

	analyzeCmd.Flags().StringVar(&analyzeMoves, "moves", "", `moves as "row,col row,col ..." played alternately`)
	analyzeCmd.Flags().StringVar(&analyzeFirst, "first", "black", "color of the first move")
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", -1, "search depth (defaults to the configured ai_depth)")

	rootCmd.AddCommand(serveCmd, playCmd, analyzeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	controller, err := NewGameController(SettingsFromConfig(cfg))
	if err != nil {
		return err
	}
	hub := NewHub("game")
	hintHub := NewHub("hint")
	hints := newHintPublisher(hintHub, func() int { return GetConfig().AiGhostThrottleMs })
	controller.SetHintPublisher(
		func() bool { return hintHub.HasClients() && GetConfig().GhostMode },
		hints.Publish,
	)
	srv := newServer(controller, hub, hintHub)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx.Done())
		return nil
	})
	g.Go(func() error {
		hintHub.Run(gctx.Done())
		return nil
	})
	g.Go(func() error {
		return runTicker(gctx, controller, srv)
	})
	g.Go(func() error {
		return config.Watch(gctx, configStore.Path(), 0, func(next config.Config, err error) {
			if err != nil {
				slog.Warn("[config] reload failed", "path", configStore.Path(), "error", err)
				return
			}
			if err := applyConfig(controller, next); err != nil {
				slog.Warn("[config] rejected", "error", err)
				return
			}
			slog.Info("[config] reloaded", "path", configStore.Path(), "ai_depth", next.AiDepth)
			hub.Publish("settings", settingsPayload{Settings: controllerSettingsDTO(controller.Settings()), Config: next})
		})
	})
	g.Go(func() error {
		slog.Info("[backend] listening", "addr", addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("[backend] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[backend] graceful shutdown failed", "error", err)
			return httpServer.Close()
		}
		return nil
	})
	return g.Wait()
}

// runTicker advances AI turns and pushes changes to websocket clients.
func runTicker(ctx context.Context, controller *GameController, srv *server) error {
	interval := time.Duration(GetConfig().TickIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sweep.C:
			srv.limiter.Sweep(10 * time.Minute)
			if pruned := sharedCache().Prune(); pruned > 0 {
				slog.Debug("[ai:cache] pruned stale results", "entries", pruned)
			}
		case <-ticker.C:
			if controller.Tick() {
				srv.publishLatest()
			}
		}
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	depth := cfg.AiDepth
	if analyzeDepth >= 0 {
		depth = analyzeDepth
	}
	moves, err := parseMoveList(analyzeMoves)
	if err != nil {
		return err
	}
	eng, err := engine.New(engine.Options{BoardSize: cfg.BoardSize, WinLength: cfg.WinLength, Depth: depth})
	if err != nil {
		return err
	}
	color := engine.CellBlack
	if strings.EqualFold(analyzeFirst, "white") {
		color = engine.CellWhite
	}
	out := cmd.OutOrStdout()
	for i, m := range moves {
		won, err := eng.Place(m.Row, m.Col, color)
		if err != nil {
			return fmt.Errorf("move %d %s: %w", i+1, m, err)
		}
		fmt.Fprintf(out, "%3d. %-5s %-7s score=%d\n", i+1, color, m, eng.CurrentScore())
		if won {
			fmt.Fprintf(out, "%s wins\n", color)
			return nil
		}
		color = color.Opponent()
	}
	if err := eng.SetColor(color); err != nil {
		return err
	}
	res, err := eng.Search(depth)
	if err != nil {
		return err
	}
	greedy, greedyScore, _ := eng.GreedyMove()
	fmt.Fprintf(out, "score:       %d\n", eng.CurrentScore())
	fmt.Fprintf(out, "fingerprint: %s\n", formatFingerprint(eng.Fingerprint()))
	fmt.Fprintf(out, "%s to move, depth %d: %s (score %d, nodes %d, cutoffs %d, %s)\n",
		color, depth, res.Move, res.Score, res.Stats.Nodes, res.Stats.Cutoffs, res.Stats.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(out, "greedy:      %s (score %d)\n", greedy, greedyScore)
	return nil
}

func parseMoveList(raw string) ([]engine.Move, error) {
	fields := strings.Fields(raw)
	moves := make([]engine.Move, 0, len(fields))
	for _, field := range fields {
		parts := strings.Split(field, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad move %q, want row,col", field)
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad row in %q: %w", field, err)
		}
		col, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("bad col in %q: %w", field, err)
		}
		moves = append(moves, engine.Move{Row: row, Col: col})
	}
	return moves, nil
}
