// Package ws pushes zone commits and alerts to connected browsers.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/couchcryptid/flood-zone-service/internal/alert"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
)

const broadcastBuffer = 256

// Message types sent to clients.
const (
	TypeZone     = "zone"
	TypeReplaced = "replaced"
	TypeAlert    = "alert"
)

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub tracks connected clients and fans out broadcasts.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger
}

// NewHub creates a Hub. Call Run before serving clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", "remote", c.remote)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("websocket client unregistered", "remote", c.remote)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("websocket client too slow, dropping", "remote", c.remote)
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(msgType string, payload any) {
	b, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		h.logger.Error("marshal websocket message", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping", "type", msgType)
	}
}

// Notify implements alert.Notifier.
func (h *Hub) Notify(_ context.Context, n alert.Notification) error {
	h.Broadcast(TypeAlert, n)
	return nil
}

// ObserveZones returns a store observer that forwards commits.
func (h *Hub) ObserveZones() func(zone.Event) {
	return func(e zone.Event) {
		switch e.Kind {
		case zone.Upserted:
			h.Broadcast(TypeZone, e.Zone)
		case zone.Replaced:
			h.Broadcast(TypeReplaced, nil)
		}
	}
}
