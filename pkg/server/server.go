// Package server exposes the layout engine over HTTP.
//
// Routes:
//
//	POST   /v1/solve                      stateless solve of a document
//	POST   /v1/sessions                   create a session and run the first pass
//	GET    /v1/sessions/{id}              current frames of a session
//	PATCH  /v1/sessions/{id}/root         resize the root, incremental pass
//	POST   /v1/sessions/{id}/fit          size fitting
//	DELETE /v1/sessions/{id}              drop a session
//	GET    /v1/documents/{hash}/snapshots stored snapshots of a document
//	GET    /metrics                       Prometheus metrics
//	GET    /healthz                       liveness and build info
//
// Errors are JSON objects {"error": {"code", "message"}} with the status
// derived from the error code: invalid documents answer 400, unknown
// sessions 404 and solver inconsistencies 409.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/anchorlayout/pkg/buildinfo"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/session"
	"github.com/matzehuels/anchorlayout/pkg/store"
)

// Options configures a Server. Zero values are replaced by SetDefaults.
type Options struct {
	Logger     *log.Logger
	Runner     *pipeline.Runner
	Sessions   session.Store
	Records    *session.FileStore
	SessionTTL time.Duration
	Metrics    http.Handler
}

// SetDefaults fills every unset option.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Runner == nil {
		o.Runner = pipeline.NewRunner(nil, nil, o.Logger)
	}
	if o.Runner.Store == nil {
		o.Runner.Store = store.NewMemoryStore()
	}
	if o.Sessions == nil {
		o.Sessions = session.NewMemoryStore()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.Metrics == nil {
		o.Metrics = promhttp.Handler()
	}
}

// Server is the HTTP layout service.
type Server struct {
	opts   Options
	logger *log.Logger
	engine *layout.Engine
	router chi.Router
}

// New creates a server and its routes.
func New(opts Options) *Server {
	opts.SetDefaults()
	s := &Server{opts: opts, logger: opts.Logger, engine: opts.Runner.Engine}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
	})
	r.Handle("/metrics", s.opts.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Get("/documents/{hash}/snapshots", s.handleSnapshots)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Patch("/root", s.handleResize)
				r.Post("/fit", s.handleFit)
			})
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept once a minute.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.opts.Sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			}
			if s.opts.Records != nil {
				if err := s.opts.Records.Cleanup(ctx); err != nil {
					s.logger.Warn("session record cleanup failed", "err", err)
				}
			}
		}
	}
}
