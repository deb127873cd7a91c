// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/depexplain/depexplain/pkg/history"
	"github.com/depexplain/depexplain/pkg/pipeline"
	"github.com/depexplain/depexplain/pkg/rules"
)

const (
	// maxRequestSize bounds uploaded requirements documents.
	maxRequestSize = 1 << 20

	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server handles analysis requests over HTTP.
type Server struct {
	mux    *chi.Mux
	runner *pipeline.Runner
	store  history.Store
	table  *rules.Table
	logger *log.Logger
}

// New creates a server.
// If store is nil, an in-memory store is used.
func New(runner *pipeline.Runner, store history.Store, logger *log.Logger) *Server {
	if store == nil {
		store = history.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		mux:    chi.NewRouter(),
		runner: runner,
		store:  store,
		table:  runner.Table,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) setupMiddleware() {
	s.mux.Use(chimiddleware.Recoverer)
	s.mux.Use(chimiddleware.Timeout(requestTimeout))
	s.mux.Use(chimiddleware.RequestSize(maxRequestSize))
	s.mux.Use(s.requestID)
	s.mux.Use(s.logRequests)
	s.mux.Use(chimiddleware.Heartbeat("/ping"))
}

func (s *Server) setupRoutes() {
	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
		r.Get("/rules", s.handleListRules)
	})
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return s.store.Close(shutdownCtx)
	}
}
