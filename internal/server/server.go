// Package server exposes the conversion service over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/transfmt/internal/config"
	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/health"
	"github.com/dmitrymomot/transfmt/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	healthTimeout     = 3 * time.Second
)

// Server serves the transfmt HTTP API.
type Server struct {
	cfg     config.ServerConfig
	svc     *convert.Service
	logger  *slog.Logger
	checks  health.Checks
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHealthCheck adds a named readiness check.
func WithHealthCheck(name string, fn health.CheckFunc) Option {
	return func(s *Server) {
		if name != "" && fn != nil {
			s.checks[name] = fn
		}
	}
}

// New builds the server and its routes. The conversion self-test is always
// part of the readiness checks.
func New(cfg config.ServerConfig, svc *convert.Service, opts ...Option) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.Default().Server.MaxBodyBytes
	}

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: logger.NewNope(),
		checks: health.Checks{"formats": svc.SelfTest},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CleanPath)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors(s.cfg.CORSOrigins))
	}

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(s.checks,
		health.WithLogger(s.logger),
		health.WithTimeout(healthTimeout),
	))

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Get("/formats", s.handleFormats)
		r.Post("/parse/{format}", s.handleParse)
		r.Post("/export/{format}", s.handleExport)
		r.Post("/convert/{from}/{to}", s.handleConvert)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &HTTPError{Code: http.StatusNotFound, ErrorCode: "not_found", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &HTTPError{Code: http.StatusMethodNotAllowed, ErrorCode: "method_not_allowed", Message: "method not allowed"})
	})
	return r
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.Default().Server.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("shutdown completed")
	return nil
}
