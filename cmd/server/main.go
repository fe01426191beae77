package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"present-delivery-service/internal/adapters/repositories"
	"present-delivery-service/internal/api"
	"present-delivery-service/internal/app"
	"present-delivery-service/internal/config"
	"present-delivery-service/internal/platform/db"
	"present-delivery-service/internal/platform/metrics"
	"present-delivery-service/internal/platform/obs"
	"present-delivery-service/internal/services"
	"strings"
	"syscall"
	"time"
)

// main is the composition root of the planning API.
// It wires the PostGIS store and HERE adapters behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(obs.NewLogger(os.Stdout, "info"))
	if err != nil {
		return err
	}

	logger := obs.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.ResolveSecrets(ctx, &cfg, logger); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.HereDevAPIKey) == "" || strings.TrimSpace(cfg.HerePlatAPIKey) == "" {
		return errors.New("HERE_DEVELOPER_API_KEY and HERE_PLATFORM_API_KEY are required")
	}
	if cfg.AppAPIKey == "" {
		logger.Warn("APP_API_KEY is not set; planning endpoints are unauthenticated")
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := repositories.NewPostgresDeliveryStore(pool, logger)
	planner := services.NewRoutePlanner(store, app.NewTourPlanner(cfg, logger), app.NewRouter(cfg, logger), logger)

	router := api.NewRouter(api.Deps{
		Ping:     pool.Ping,
		Planner:  planner,
		Presents: store,
		APIKey:   cfg.AppAPIKey,
		Logger:   logger,
	})

	// Write timeout covers a full planning run: tour solving alone may take a minute.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Shutting down")
	return srv.Shutdown(shutdownCtx)
}
