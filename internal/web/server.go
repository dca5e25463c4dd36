// Package web provides the HTTP service surface: a health check, an on-demand
// sync trigger, and read-only lesson query endpoints over the source sheet.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkranz/sheetsync/internal/config"
	"github.com/mkranz/sheetsync/internal/source"
	"github.com/mkranz/sheetsync/internal/syncer"
	"github.com/mkranz/sheetsync/internal/web/middleware"
)

// SyncRunner executes one attachment sync job. Implemented by syncer.Syncer.
type SyncRunner interface {
	Run(ctx context.Context, job syncer.Job) (syncer.Result, error)
}

// Server is the HTTP server for the sync service.
type Server struct {
	cfg    *config.Config
	syncer SyncRunner
	sheets source.SheetReader
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, runner SyncRunner, sheets source.SheetReader) *Server {
	s := &Server{
		cfg:    cfg,
		syncer: runner,
		sheets: sheets,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimiddleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/sync", s.handleSync)
	s.router.Get("/lesson", s.handleLesson)
	s.router.Get("/lessons", s.handleLessons)
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
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
