package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/sales-call-agent/internal/agents"
	"github.com/wolfman30/sales-call-agent/internal/auth"
	"github.com/wolfman30/sales-call-agent/internal/conversation"
	httpmiddleware "github.com/wolfman30/sales-call-agent/internal/http/middleware"
	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/reporting"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	Authenticator       httpmiddleware.Authenticator
	AuthHandler         *auth.Handler
	AgentsHandler       *agents.Handler
	ConversationHandler *conversation.Handler
	ReportingHandler    *reporting.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per-client limit on the unauthenticated /auth endpoints. Zero disables it.
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	requireAuth := httpmiddleware.RequireAuth(cfg.Authenticator, cfg.Logger)

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AuthHandler != nil {
		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(public chi.Router) {
				if cfg.AuthRateLimitRPS > 0 && cfg.AuthRateLimitBurst > 0 {
					public.Use(httpmiddleware.RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst))
				}
				cfg.AuthHandler.PublicRoutes(public)
			})
			ar.With(requireAuth).Get("/me", cfg.AuthHandler.Me)
		})
	}

	if cfg.AgentsHandler != nil {
		r.Route("/agents", func(ar chi.Router) {
			ar.Use(requireAuth)
			cfg.AgentsHandler.Routes(ar)
		})
	}

	if h := cfg.ConversationHandler; h != nil {
		r.Route("/calls", func(cr chi.Router) {
			cr.With(httpmiddleware.OptionalAuth(cfg.Authenticator)).Post("/start", h.Start)
			cr.Post("/message", h.Message)
			cr.Post("/end", h.End)
			cr.Post("/summarize", h.Summarize)
		})
		r.Route("/conversations", func(cr chi.Router) {
			cr.Use(requireAuth)
			cr.Get("/", h.List)
			cr.Get("/{id}", h.Get)
			cr.Delete("/{id}", h.Delete)
			cr.Get("/{id}/export", h.Export)
		})
	}

	if h := cfg.ReportingHandler; h != nil {
		r.With(requireAuth).Get("/statistics", h.Statistics)
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAuth, httpmiddleware.RequireAdmin(cfg.Logger))
			admin.Get("/stats", h.AdminStats)
			admin.Get("/users", h.AdminUsers)
		})
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		deps := make(map[string]string, len(checks))
		status, code := "ok", http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		body := map[string]any{"status": status, "time": time.Now().UTC().Format(time.RFC3339)}
		if len(deps) > 0 {
			body["dependencies"] = deps
		}
		respond.JSON(w, code, body)
	}
}
