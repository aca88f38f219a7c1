package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kontrib/kontrib/internal/middleware"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.notifications.List(r.Context(), middleware.IdentityID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkRead(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.Dismiss(r.Context(), mux.Vars(r)["id"], middleware.IdentityID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
