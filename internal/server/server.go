// Package server exposes the transform pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/pipeline"
	"github.com/koskimas/typeshift/internal/store"
	"github.com/urfave/negroni"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	settingTarget = "target"

	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Addr string
	// RateLimit is the number of transforms per second. Zero disables the
	// limit.
	RateLimit float64
	Burst     int
	// DefaultTarget is used when a transform request names no target.
	DefaultTarget gen.Target
}

type Server struct {
	opts     Options
	log      *zap.SugaredLogger
	router   *mux.Router
	pipeline *pipeline.Pipeline
	settings store.SettingsStore
	limiter  *rate.Limiter
}

func New(log *zap.SugaredLogger, p *pipeline.Pipeline, settings store.SettingsStore, opts Options) (*Server, error) {
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = gen.TargetZod
	}

	if _, err := settings.EnsureDefault(settingTarget, string(opts.DefaultTarget)); err != nil {
		return nil, errors.Wrap(err, "failed to initialize settings")
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		opts:     opts,
		log:      log,
		router:   mux.NewRouter(),
		pipeline: p,
		settings: settings,
		limiter:  rate.NewLimiter(limit, burst),
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the router wrapped in the recovery and request id
// middleware.
func (s *Server) Handler() http.Handler {
	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = recoveryLogger{s.log}

	n := negroni.New(recovery, negroni.HandlerFunc(requestID))
	n.UseHandler(s.router)
	return n
}

// ListenAndServe serves until ctx is done and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Infow("Listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrapf(err, "failed to listen at %s", s.opts.Addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}

	return nil
}

type recoveryLogger struct {
	log *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error(v...)
}

func (l recoveryLogger) Printf(format string, v ...any) {
	l.log.Errorf(format, v...)
}
