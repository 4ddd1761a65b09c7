// Package server exposes layout metrics over HTTP.
//
// Routes:
//
//	POST /v1/metrics        analyze a diagram (JSON body), returns the report
//	GET  /v1/reports        list stored reports, newest first (?limit=)
//	GET  /v1/reports/{id}   fetch one stored report
//	GET  /healthz           liveness probe
//
// Query parameters on POST /v1/metrics: crossings=true includes the
// individual crossing pairs, save=false skips persisting the report.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
)

const (
	defaultMaxBody  = 8 << 20
	shutdownTimeout = 30 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Timeout bounds the longest-path search of each request.
	Timeout time.Duration

	// MaxBodyBytes limits request bodies. Zero uses 8 MiB.
	MaxBodyBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *log.Logger
}

// Server serves the metrics API backed by a pipeline runner. Reports are
// stored through the runner's store; without one the report routes
// respond 501.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, opts: opts, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.With(requireJSON).Post("/metrics", s.handleMetrics)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		s.logger.Info("starting http server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errs
}
