// Package push maintains live WebSocket connections per identity and
// delivers best-effort notification messages to them.
//
// Delivery is fire-and-forget: a failed write drops the connection and is
// counted, but never fails the operation that triggered it. Clients that
// miss a push recover by polling the notification list on reconnect.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/kontrib/kontrib/internal/metrics"
)

// writeTimeout bounds how long a slow connection can stall a send.
const writeTimeout = 5 * time.Second

// Hub tracks the open connections of each identity. An identity may hold
// several connections at once (multiple tabs or devices).
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*websocket.Conn]struct{})}
}

// Register adds a connection for an identity.
func (h *Hub) Register(identityID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[identityID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.conns[identityID] = set
	}
	set[conn] = struct{}{}
}

// Unregister removes a connection for an identity.
func (h *Hub) Unregister(identityID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[identityID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, identityID)
	}
}

// Connections reports how many live connections an identity holds.
func (h *Hub) Connections(identityID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[identityID])
}

// Send marshals payload and writes it to every open connection of the
// identity. Returns the number of successful deliveries. Failed connections
// are closed and dropped.
func (h *Hub) Send(ctx context.Context, identityID string, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("push: failed to marshal payload", "identity_id", identityID, "error", err)
		return 0
	}

	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.conns[identityID]))
	for conn := range h.conns[identityID] {
		targets = append(targets, conn)
	}
	h.mu.Unlock()

	delivered := 0
	for _, conn := range targets {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			metrics.PushFailures.Inc()
			slog.Warn("push: write failed, dropping connection",
				"identity_id", identityID, "error", err)
			conn.Close(websocket.StatusInternalError, "write failed")
			h.Unregister(identityID, conn)
			continue
		}
		metrics.PushDelivered.Inc()
		delivered++
	}
	return delivered
}
