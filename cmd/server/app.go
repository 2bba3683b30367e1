package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/diewo77/prevengo/httpx"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	router    chi.Router
	routerCfg *policy.RouterConfig
	logger    *zap.Logger
	origins   []string
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig, logger *zap.Logger, allowedOrigins []string) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		router:    chi.NewRouter(),
		routerCfg: routerCfg,
		logger:    logger,
		origins:   allowedOrigins,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	r := a.router
	r.Use(middleware.RequestID)
	r.Use(observability.RequestLogger(a.logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(withCORS(a.origins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ah := a.routerCfg.AuthHandler
	ch := a.routerCfg.CompanyHandler
	qh := a.routerCfg.QuoteHandler

	r.Route("/api", func(api chi.Router) {
		// Public routes
		api.Post("/auth/register", ah.Register)
		api.Post("/auth/login", ah.Login)

		// Authenticated routes
		api.Group(func(p chi.Router) {
			p.Use(a.routerCfg.Auth.RequireAuth)

			p.Get("/auth/me", ah.Me)
			p.Post("/auth/companyProfile", ch.UpdateProfile)
			p.Put("/auth/companyProfile", ch.UpdateProfile)
			p.Get("/auth/history", qh.List)
			p.Get("/history", qh.List)

			p.Post("/quotes", qh.Create)
			p.Get("/quotes", qh.List)
			p.Get("/quotes/{id}", qh.Get)
			p.Get("/quotes/{id}/pdf", qh.PDF)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

// withCORS answers preflight requests and sets CORS headers for the
// configured origins. "*" allows any origin. Content-Disposition is exposed
// so browsers can read the PDF file name.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !(allowed["*"] || allowed[origin]) {
				if r.Method == http.MethodOptions && origin != "" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", "Content-Disposition")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
