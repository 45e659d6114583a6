package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

var (
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gomoku_search_duration_seconds",
		Help:    "Engine search latency by purpose",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 20},
	}, []string{"purpose"})

	searchNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomoku_search_nodes_total",
		Help: "Search nodes visited by purpose",
	}, []string{"purpose"})

	searchCutoffs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomoku_search_cutoffs_total",
		Help: "Alpha-beta cutoffs by purpose",
	}, []string{"purpose"})

	searchCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomoku_search_cache_lookups_total",
		Help: "Search result cache lookups by outcome",
	}, []string{"result"})

	movesPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomoku_moves_total",
		Help: "Moves applied by color and player kind",
	}, []string{"color", "player"})

	gamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gomoku_games_finished_total",
		Help: "Finished games by result",
	}, []string{"result"})

	wsClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gomoku_ws_clients",
		Help: "Connected websocket clients by hub",
	}, []string{"hub"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gomoku_rate_limited_total",
		Help: "Requests rejected by the move rate limiter",
	})
)

func recordSearch(purpose string, stats engine.SearchStats, elapsed time.Duration) {
	searchDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
	searchNodes.WithLabelValues(purpose).Add(float64(stats.Nodes))
	searchCutoffs.WithLabelValues(purpose).Add(float64(stats.Cutoffs))
}

func recordMove(player PlayerColor, isAi bool) {
	kind := "human"
	if isAi {
		kind = "ai"
	}
	movesPlayed.WithLabelValues(player.String(), kind).Inc()
}

func recordGameOver(status GameStatus) {
	gamesFinished.WithLabelValues(statusToString(status)).Inc()
}
