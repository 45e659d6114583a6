package main

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub fans JSON messages out to its websocket clients. Slow clients drop
// messages instead of blocking the broadcaster.
type Hub struct {
	name      string
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan wsMessage
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub(name string) *Hub {
	return &Hub{
		name:      name,
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan wsMessage, 64),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(msg)
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a message of kind for every client. It never blocks.
func (h *Hub) Publish(kind string, payload any) {
	select {
	case h.broadcast <- wsMessage{Type: kind, Payload: mustMarshal(payload)}:
	default:
		slog.Debug("[hub] broadcast queue full", "hub", h.name, "type", kind)
	}
}

func (h *Hub) NewClient() *Client {
	c := &Client{hub: h, send: make(chan []byte, 16)}
	h.Register(c)
	return c
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	wsClients.WithLabelValues(h.name).Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	wsClients.WithLabelValues(h.name).Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
