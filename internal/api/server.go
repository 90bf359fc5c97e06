// Package api serves the pagesmith REST API.
//
// Routes live under /api/v1. Handlers decode JSON, call the project and
// auth services, and encode the result; every failure is written as
// {"message": ..., "code": ...} with a status derived from the error code.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
)

// Options configure a Server.
type Options struct {
	Projects *project.Service
	Auth     *auth.Service
	// Exports renders artifacts. Nil means an uncached runner.
	Exports *export.Runner
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
	Logger      *log.Logger
}

// Server holds the API dependencies.
type Server struct {
	projects *project.Service
	auth     *auth.Service
	exports  *export.Runner
	origins  []string
	logger   *log.Logger
}

// New returns a Server. Projects and Auth are required.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	exports := opts.Exports
	if exports == nil {
		exports = export.NewRunner(nil, nil, logger)
	}
	return &Server{
		projects: opts.Projects,
		auth:     opts.Auth,
		exports:  exports,
		origins:  opts.CORSOrigins,
		logger:   logger,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/logout", s.handleLogout)
			r.Post("/templates/{id}/create", s.handleCreateFromTemplate)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.handleListProjects)
				r.Post("/", s.handleCreateProject)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetProject)
					r.Put("/", s.handleSaveProject)
					r.Delete("/", s.handleDeleteProject)
					r.Post("/elements", s.handleAddElement)
					r.Patch("/elements/{elementID}", s.handleUpdateElement)
					r.Delete("/elements/{elementID}", s.handleRemoveElement)
					r.Get("/export/{format}", s.handleExport)
					r.Get("/preview", s.handlePreview)
				})
			})
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	if err := s.projects.Repository().Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}
