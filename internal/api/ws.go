package api

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// handleWebSocket upgrades the connection and parks it in the push hub for
// the authenticated identity. The access token travels in the token query
// parameter because browser WebSocket clients cannot set headers.
//
// The read loop discards client frames; the socket is server-push only. It
// exits when the client disconnects, unregistering the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}
	claims, err := s.jwt.Validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket accept failed", "error", err)
		return
	}

	identityID := claims.IdentityID
	s.hub.Register(identityID, conn)
	slog.Debug("WebSocket connected", "identity_id", identityID)

	defer func() {
		s.hub.Unregister(identityID, conn)
		conn.Close(websocket.StatusNormalClosure, "")
		slog.Debug("WebSocket disconnected", "identity_id", identityID)
	}()

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}
