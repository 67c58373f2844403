// Package core provides the HTTP chassis for the Bio-Twin API: a chi router,
// the shared middleware chain, response envelopes, request validation and
// health probes. Domain handlers register themselves under /v1.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"biotwin/internal/config"
)

// MetricsCollector records API request latency and count. RecordRequest runs
// on the request path after the handler returns and must not block on I/O.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server holds the API dependencies so tests can inject their own.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	Validator    *Validator
	Metrics      MetricsCollector
	HealthProbes []HealthProbe

	// V1RouteRegistrars mount domain handlers under /v1. They are supplied by
	// the entry point so core never imports handler packages.
	V1RouteRegistrars []func(chi.Router)

	// Closers run in order during Shutdown (database pools and the like).
	Closers []func()

	router *chi.Mux
}

// NewServer builds a Server with an empty router. Call MountRoutes after the
// registrars and probes are set.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the chi.Mux for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server resources. It returns ctx.Err() if the deadline
// passes before every closer has run.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range s.Closers {
			c()
		}
	}()

	select {
	case <-done:
		s.Logger.Info("server shutdown complete")
		return nil
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("server shutdown timed out")
		}
		return err
	}
}
