package main

import (
	"net/http"
	"sync"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

type hintCell struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Player int `json:"player"`
}

type hintPayload struct {
	Mode        string    `json:"mode,omitempty"`
	Best        *hintCell `json:"best,omitempty"`
	Depth       int       `json:"depth,omitempty"`
	Score       int       `json:"score,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	NextPlayer  int       `json:"next_player,omitempty"`
	HistoryLen  int       `json:"history_len,omitempty"`
	Active      bool      `json:"active"`
}

// hintPublisher throttles hint payloads before they reach the hub.
type hintPublisher struct {
	mu       sync.Mutex
	hub      *Hub
	throttle func() int
	last     hintPayload
	lastAt   int64
}

func newHintPublisher(hub *Hub, throttleMs func() int) *hintPublisher {
	return &hintPublisher{hub: hub, throttle: throttleMs}
}

func (p *hintPublisher) Publish(payload hintPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if payload == p.last && !payload.Active {
		return
	}
	now := nowMs()
	if payload.Active && p.throttle != nil {
		if ms := int64(p.throttle()); ms > 0 && p.last.Active && now-p.lastAt < ms && samePosition(p.last, payload) {
			return
		}
	}
	p.last = payload
	p.lastAt = now
	p.hub.Publish("hint", payload)
}

func samePosition(a, b hintPayload) bool {
	return a.Fingerprint == b.Fingerprint && a.HistoryLen == b.HistoryLen
}

func hintFromResult(res engine.SearchResult, player PlayerColor, historyLen int, fingerprint uint64) hintPayload {
	toMove := playerToInt(player)
	return hintPayload{
		Mode:        "best_move",
		Best:        &hintCell{Row: res.Move.Row, Col: res.Move.Col, Player: toMove},
		Depth:       res.Depth,
		Score:       res.Score,
		Fingerprint: formatFingerprint(fingerprint),
		NextPlayer:  toMove,
		HistoryLen:  historyLen,
		Active:      true,
	}
}

func serveHintWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	serveHubClient(hub, w, r, nil, nil)
}
