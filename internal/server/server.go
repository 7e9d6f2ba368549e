// Package server serves the siege-map collaborator API backed by the store,
// the server-rendered map pages and the per-map event streams.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"siegemap/internal/board"
	"siegemap/internal/collab"
	"siegemap/internal/ratelimit"
	"siegemap/internal/render"
	"siegemap/internal/store"
	"siegemap/internal/validation"
)

// Server wraps HTTP handlers and their dependencies.
type Server struct {
	cfg       Config
	logger    *slog.Logger
	store     *store.Store
	catalog   *render.Catalog
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	hub       *MapHub
	pages     *board.Pages
	resolver  *collab.Resolver
	router    chi.Router
}

// New constructs a Server with routes and middleware configured. catalog may
// be empty but not nil.
func New(cfg Config, logger *slog.Logger, st *store.Store, catalog *render.Catalog) (*Server, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure uploads directory: %w", err)
	}
	pages, err := board.NewPages()
	if err != nil {
		return nil, err
	}
	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set, write routes are open")
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		catalog:   catalog,
		validator: validation.New(),
		limiter:   ratelimit.New(cfg.WriteRateLimit, cfg.WriteRateBurst),
		hub:       NewMapHub(),
		pages:     pages,
		resolver:  collab.NewResolver(storeFetcher{st}, logger),
		router:    chi.NewRouter(),
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub exposes the event hub.
func (s *Server) Hub() *MapHub { return s.hub }

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// HTTPServer builds the net/http server for cfg.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsHandler())
	r.Use(s.securityHeaders)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/defenses/{id}", s.handleGetDefense)
		r.Get("/users", s.handleListUsers)
		r.Get("/gestion/assignments", s.handleListAssignments)
		r.Get("/map/towers", s.handleListTowers)
		r.Get("/map/towers/{id}", s.handleGetTower)
		r.Get("/map/{mapName}/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Use(s.requireAdmin)
			r.Post("/map/towers", s.handleCreateTower)
			r.Put("/map/towers/{id}", s.handleUpdateTower)
			r.Patch("/map/towers/{id}/geometry", s.handleUpdateGeometry)
			r.Delete("/map/towers/{id}", s.handleDeleteTower)
			r.Post("/defenses", s.handleCreateDefense)
			r.Post("/users", s.handleCreateUser)
			r.Put("/gestion/assignments/{defenseId}", s.handleSetEligibility)
		})
	})

	r.Get("/map/{mapName}", s.handleMapPage)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir))))
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(board.Assets()))))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
