package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kontrib/kontrib/internal/api"
	"github.com/kontrib/kontrib/internal/auth"
	"github.com/kontrib/kontrib/internal/config"
	"github.com/kontrib/kontrib/internal/push"
	"github.com/kontrib/kontrib/internal/service"
	"github.com/kontrib/kontrib/internal/storage/sqlite"
	"github.com/kontrib/kontrib/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := push.NewHub()
	notificationSvc := service.NewNotificationService(store, hub)

	server := api.NewServer(
		service.NewAuthService(store, jwtMgr, cfg.OTPTTL, cfg.OTPMaxAttempts),
		service.NewGroupService(store),
		service.NewContributionService(store, notificationSvc),
		notificationSvc,
		hub,
		jwtMgr,
	)

	// h2c lets HTTP/2 clients connect without TLS, which terminates at the
	// proxy in front of this server.
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(server.Router(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", cfg.Addr(), "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
