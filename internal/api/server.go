// Package api exposes the Kontrib HTTP surface: REST routes for auth,
// groups, contributions, and notifications, plus the live push WebSocket.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kontrib/kontrib/internal/auth"
	"github.com/kontrib/kontrib/internal/middleware"
	"github.com/kontrib/kontrib/internal/push"
	"github.com/kontrib/kontrib/internal/service"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	auth          *service.AuthService
	groups        *service.GroupService
	contributions *service.ContributionService
	notifications *service.NotificationService
	hub           *push.Hub
	jwt           *auth.JWTManager
}

// NewServer creates a Server over the given services.
func NewServer(
	authSvc *service.AuthService,
	groupSvc *service.GroupService,
	contributionSvc *service.ContributionService,
	notificationSvc *service.NotificationService,
	hub *push.Hub,
	jwtMgr *auth.JWTManager,
) *Server {
	return &Server{
		auth:          authSvc,
		groups:        groupSvc,
		contributions: contributionSvc,
		notifications: notificationSvc,
		hub:           hub,
		jwt:           jwtMgr,
	}
}

// Router builds the full route table.
//
// The WebSocket endpoint is registered outside the logging/metrics chain
// because the connection hijack is incompatible with response wrapping.
func (s *Server) Router() *mux.Router {
	root := mux.NewRouter()

	root.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	root.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := root.PathPrefix("/api").Subrouter()
	api.Use(middleware.Logging, middleware.Metrics)

	// Unauthenticated auth endpoints.
	api.HandleFunc("/auth/otp/send", s.handleSendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp/verify", s.handleVerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/device/validate", s.handleValidateDevice).Methods(http.MethodPost)
	api.HandleFunc("/auth/identity/{id}", s.handleCheckIdentity).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	// Everything below requires a Bearer access token.
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth(s.jwt))

	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile", s.handleUpdateProfile).Methods(http.MethodPatch)

	authed.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	authed.HandleFunc("/groups", s.handleListGroups).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{id}", s.handleGetGroup).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{id}/join", s.handleJoinGroup).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{id}/projects", s.handleCreateProject).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{id}/projects", s.handleListProjects).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{id}/contributions", s.handleListContributions).Methods(http.MethodGet)

	authed.HandleFunc("/contributions", s.handleSubmitContribution).Methods(http.MethodPost)
	authed.HandleFunc("/contributions/{id}", s.handleGetContribution).Methods(http.MethodGet)
	authed.HandleFunc("/contributions/{id}/confirm", s.handleConfirmContribution).Methods(http.MethodPatch)
	authed.HandleFunc("/contributions/{id}/reject", s.handleRejectContribution).Methods(http.MethodPatch)

	authed.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id}", s.handleDismissNotification).Methods(http.MethodDelete)

	return root
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
