package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/config"
	"github.com/mmynk/splitmint/internal/session"
	"github.com/mmynk/splitmint/internal/storage/sqlite"
	"github.com/mmynk/splitmint/internal/web"
	"github.com/mmynk/splitmint/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.StatePath)

	sess := session.New(store, web.Navigator{})
	if err := sess.Hydrate(ctx); err != nil {
		// Hydration failures leave the user signed out; keep serving.
		slog.Warn("Starting signed out", "error", err)
	}

	client := api.New(cfg.APIBaseURL, sess, api.WithTimeout(cfg.RequestTimeout))
	srv, err := web.New(sess, client, cfg.AllowedOrigins)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Web client starting",
			"address", cfg.ListenAddr,
			"url", "http://"+cfg.ListenAddr,
			"api", cfg.APIBaseURL,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
