// Package web provides the HTTP server and handlers for product imports.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/productimport/internal/config"
	"github.com/JonMunkholm/productimport/internal/importer"
	"github.com/JonMunkholm/productimport/internal/web/middleware"
)

// RowImporter imports rows for one run. *importer.Importer satisfies it.
type RowImporter interface {
	ImportRow(ctx context.Context, row importer.Row) (importer.Result, error)
	PercentComplete() int
}

// ImporterFactory builds the importer for one request. pos reports how far
// the request body has been read.
type ImporterFactory func(pos importer.Position, logger *slog.Logger) RowImporter

// Pinger checks the database connection. Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server calls into.
type Deps struct {
	NewImporter ImporterFactory
	DB          Pinger
}

// Server is the HTTP server for the import service.
type Server struct {
	deps    Deps
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *importLimiter
}

// NewServer creates a new Server instance.
func NewServer(deps Deps, cfg *config.Config) *Server {
	s := &Server{
		deps:    deps,
		cfg:     cfg,
		router:  chi.NewRouter(),
		limiter: newImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWait),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/products/import", s.handleImport)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Server) WaitForImports(ctx context.Context) error {
	return s.limiter.waitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DB.Ping(r.Context()); err != nil {
		s.respondError(w, r, errDatabaseDown, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
