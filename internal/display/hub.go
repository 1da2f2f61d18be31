// Package display implements the broadcast gateway: a websocket hub that
// mirrors the pending queue to connected display clients and routes their
// moderation actions back into the queue manager.
package display

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jukebot/internal/core"
)

// QueueActions is the slice of the queue manager the display path may drive.
type QueueActions interface {
	Snapshot() []core.QueueEntry
	Remove(ctx context.Context, id string)
	MarkPlayed(ctx context.Context, id string)
}

// queueFrame is the server→client snapshot message.
type queueFrame struct {
	Type    string            `json:"type"`
	Entries []core.QueueEntry `json:"entries"`
}

// actionFrame is a client→server moderation message.
type actionFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

const (
	actionDelete     = "delete"
	actionMarkPlayed = "mark_played"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Display clients are served from arbitrary origins (OBS overlays,
	// local dashboards); the socket carries no credentials.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub owns the set of connected display clients and fans queue snapshots out
// to all of them. It implements core.Broadcaster.
type Hub struct {
	actions    QueueActions
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Bind wires the queue actions. The hub broadcasts for the queue manager and
// the queue manager serves the hub's actions, so one side binds late. Must be
// called before Run.
func (h *Hub) Bind(actions QueueActions) {
	h.actions = actions
}

// Run owns the client set until the context is canceled. All registration and
// fan-out happens on this goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Unblock pump goroutines and in-flight ServeWS registrations
			// before the hub goroutine stops receiving.
			close(h.done)
			for client := range h.clients {
				h.drop(client)
			}
			h.logger.Info("Display hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			// A fresh client gets the current queue immediately.
			if frame, err := marshalQueue(h.actions.Snapshot()); err == nil {
				client.trySend(frame)
			}
			h.logger.Debug("Display client connected",
				zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
			h.logger.Debug("Display client disconnected",
				zap.Int("clients", len(h.clients)))

		case frame := <-h.broadcast:
			for client := range h.clients {
				if !client.trySend(frame) {
					// Slow client: drop it rather than stall the fan-out.
					h.drop(client)
				}
			}
		}
	}
}

// Broadcast implements core.Broadcaster: the full ordered queue is marshaled
// once and fanned out to every connected client.
func (h *Hub) Broadcast(entries []core.QueueEntry) {
	frame, err := marshalQueue(entries)
	if err != nil {
		h.logger.Error("Failed to marshal queue snapshot", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- frame:
	default:
		h.logger.Warn("Broadcast channel full, dropping snapshot")
	}
}

// ServeWS upgrades an HTTP request to a display-client connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h, conn)
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// handleAction routes one inbound client frame. Unknown ids are no-ops inside
// the queue manager; unknown types are dropped here.
func (h *Hub) handleAction(ctx context.Context, raw []byte) {
	var frame actionFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.logger.Debug("Malformed display action", zap.Error(err))
		return
	}

	switch frame.Type {
	case actionDelete:
		h.actions.Remove(ctx, frame.ID)
	case actionMarkPlayed:
		h.actions.MarkPlayed(ctx, frame.ID)
	default:
		h.logger.Debug("Unknown display action",
			zap.String("type", frame.Type))
	}
}

// ClientCount reports how many displays are connected. Safe from any
// goroutine.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	_ = client.conn.Close()
	h.count.Store(int64(len(h.clients)))
}

func marshalQueue(entries []core.QueueEntry) ([]byte, error) {
	if entries == nil {
		entries = []core.QueueEntry{}
	}
	return json.Marshal(queueFrame{Type: "queue", Entries: entries})
}
