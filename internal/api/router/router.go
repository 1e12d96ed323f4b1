// Package router assembles the HTTP surface.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/equilibra/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/equilibra/internal/http/middleware"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Chat               *handlers.ChatHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter

	// HealthCheck reports dependency health (for example a Redis ping). Optional.
	HealthCheck func(ctx context.Context) error
}

// New creates a Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg == nil || cfg.Chat == nil {
		panic("router: chat handler cannot be nil")
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthHandler(cfg.HealthCheck))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Middleware)
		}
		api.Get("/symptoms", cfg.Chat.Symptoms)
		api.Get("/session", cfg.Chat.Session)
		api.Post("/chat", cfg.Chat.Chat)
		api.Post("/reset", cfg.Chat.Reset)
		api.Post("/cancel", cfg.Chat.Cancel)
		api.Post("/availability", cfg.Chat.Availability)
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
