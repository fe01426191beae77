package api

import (
	"context"
	"log/slog"
	"net/http"
	"present-delivery-service/internal/api/handlers"
	"present-delivery-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Ping     func(ctx context.Context) error
	Planner  handlers.Planner
	Presents handlers.PresentLister
	// Empty disables the API key check.
	APIKey string
	Logger *slog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Ping: d.Ping, Logger: d.Logger}
	planHandler := &handlers.PlanHandler{Planner: d.Planner, Logger: d.Logger}
	presentHandler := &handlers.PresentHandler{Store: d.Presents, Logger: d.Logger}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/plans", requireAPIKey(d.APIKey, http.HandlerFunc(planHandler.Plan)))
	mux.Handle("/presents", requireAPIKey(d.APIKey, http.HandlerFunc(presentHandler.List)))

	return requestIDMiddleware(loggingMiddleware(d.Logger, mux))
}
