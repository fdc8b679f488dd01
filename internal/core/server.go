// Package core provides the HTTP server, middleware chain, metrics and
// response helpers shared by every route of the API.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bossmachine/bossmachine/internal/config"
)

// NewLogger builds the structured logger described by cfg. Verbose forces
// debug level so per-request lines are emitted.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Level()
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Server wraps a chi router with the common middleware stack, a metrics
// registry and lifecycle management.
type Server struct {
	Config   *config.Config
	Router   *chi.Mux
	Logger   *slog.Logger
	Registry *prometheus.Registry
	mw       *Middleware
}

// New creates a Server. The /metrics endpoint is mounted immediately; API and
// admin routes are mounted by their packages.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()
	mw := NewMiddleware(cfg, logger, NewMetrics(reg))

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Recovery)
	r.Use(mw.CORS)
	r.Use(mw.RequestLog)
	r.Use(mw.Metrics)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &Server{
		Config:   cfg,
		Router:   r,
		Logger:   logger,
		Registry: reg,
		mw:       mw,
	}
}

// Middleware returns the middleware instance for route groups and the admin
// plane.
func (s *Server) Middleware() *Middleware {
	return s.mw
}

// Serve listens on the configured port until ctx is cancelled, then drains
// in-flight requests for up to 10 seconds.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-errCh
	return err
}

// ServeHTTP implements http.Handler so a Server can be used directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    http.StatusText(status),
			"code":    status,
		},
	})
}

// Empty writes a status code with no body.
func Empty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
