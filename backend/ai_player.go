package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

var tracer = otel.Tracer("gomoku.ai")

// AIPlayer runs engine searches on a private copy of the game engine, either
// inline or on a background worker polled by the game tick.
type AIPlayer struct {
	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  engine.SearchResult
	readyErr   error
}

func NewAIPlayer() *AIPlayer {
	return &AIPlayer{}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) ChooseMove(ctx context.Context, eng *engine.Engine, player PlayerColor, depth int, purpose string) (engine.SearchResult, error) {
	return runSearch(ctx, eng.Clone(), player, depth, purpose)
}

// StartThinking snapshots eng and searches in the background. onDone runs on
// the worker once a result is stored; it must not block on the caller.
func (a *AIPlayer) StartThinking(eng *engine.Engine, player PlayerColor, depth int, purpose string, onDone func(engine.SearchResult)) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)
	a.stopSignal.Store(false)

	snapshot := eng.Clone()
	done := make(chan struct{})
	a.workerDone = done
	go func() {
		defer close(done)
		defer a.thinking.Store(false)
		res, err := runSearch(context.Background(), snapshot, player, depth, purpose)
		a.moveMutex.Lock()
		if a.stopSignal.Load() {
			a.moveMutex.Unlock()
			return
		}
		a.readyMove = res
		a.readyErr = err
		a.moveReady.Store(true)
		a.moveMutex.Unlock()
		if err == nil && onDone != nil {
			onDone(res)
		}
	}()
}

// StopThinking discards the result of the running search, if any.
func (a *AIPlayer) StopThinking() {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	if a.thinking.Load() {
		a.stopSignal.Store(true)
	}
	a.moveReady.Store(false)
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() (engine.SearchResult, error) {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove, a.readyErr
}

// Wait blocks until the background worker, if any, has exited.
func (a *AIPlayer) Wait() {
	if a.workerDone != nil {
		<-a.workerDone
	}
}

func runSearch(ctx context.Context, eng *engine.Engine, player PlayerColor, depth int, purpose string) (engine.SearchResult, error) {
	_, span := tracer.Start(ctx, "AIPlayer.search",
		trace.WithAttributes(
			attribute.String("gomoku.purpose", purpose),
			attribute.String("gomoku.color", player.String()),
			attribute.Int("gomoku.depth", depth),
			attribute.Int("gomoku.stones", len(eng.Moves())),
		),
	)
	defer span.End()

	key := cacheKey{
		Fingerprint: eng.Fingerprint(),
		Size:        eng.Size(),
		WinLength:   eng.WinLength(),
		Color:       CellFromPlayer(player),
		Depth:       depth,
	}
	cache := sharedCache()
	if res, ok := cache.Probe(key); ok {
		searchCacheLookups.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("gomoku.cache_hit", true))
		return res, nil
	}
	searchCacheLookups.WithLabelValues("miss").Inc()

	if err := eng.SetColor(CellFromPlayer(player)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return engine.SearchResult{}, err
	}
	start := time.Now()
	res, err := eng.Search(depth)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	span.SetAttributes(
		attribute.Int("gomoku.move.row", res.Move.Row),
		attribute.Int("gomoku.move.col", res.Move.Col),
		attribute.Int("gomoku.score", res.Score),
		attribute.Int64("gomoku.nodes", res.Stats.Nodes),
		attribute.Int64("gomoku.cutoffs", res.Stats.Cutoffs),
	)
	recordSearch(purpose, res.Stats, elapsed)
	cache.Store(key, res)
	if GetConfig().AiLogSearchStats {
		logSearchStats(purpose, res)
	}
	return res, nil
}

func logSearchStats(tag string, res engine.SearchResult) {
	elapsed := res.Stats.Elapsed
	nps := 0.0
	if elapsed > 0 {
		nps = float64(res.Stats.Nodes) / elapsed.Seconds()
	}
	cutoffRate := 0.0
	if res.Stats.Nodes > 0 {
		cutoffRate = float64(res.Stats.Cutoffs) * 100.0 / float64(res.Stats.Nodes)
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	slog.Info(fmt.Sprintf("[ai:%s] search done", tag),
		"color", res.Color.String(),
		"depth", res.Depth,
		"move", res.Move.String(),
		"score", res.Score,
		"t_ms", elapsed.Milliseconds(),
		"nodes", res.Stats.Nodes,
		"leaves", res.Stats.Leaves,
		"nps", fmt.Sprintf("%.0f", nps),
		"cutoffs", res.Stats.Cutoffs,
		"cutoff_rate", fmt.Sprintf("%.1f%%", cutoffRate),
		"mem_heap", formatBytes(mem.HeapAlloc),
		"mem_sys", formatBytes(mem.Sys),
	)
}

func formatBytes(n uint64) string {
	const (
		kb = 1 << (10 * 1)
		mb = 1 << (10 * 2)
		gb = 1 << (10 * 3)
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(gb))
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.2f kB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
