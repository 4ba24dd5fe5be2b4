// Package api provides the HTTP API for parsing and formatting SQL.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/seamsql/seamsql/pkg/dialect"
	"golang.org/x/sync/errgroup"
)

// Server serves the SQL parsing and formatting API.
type Server struct {
	host   string
	port   int
	syn    *dialect.Syntax
	logger *slog.Logger
}

// Config holds configuration for the API server. Syntax is the
// dialect used for requests that do not name one.
type Config struct {
	Host   string
	Port   int
	Syntax *dialect.Syntax
	Logger *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	syn := cfg.Syntax
	if syn == nil {
		syn = dialect.Default
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		host:   cfg.Host,
		port:   cfg.Port,
		syn:    syn,
		logger: logger,
	}
}

// Routes builds the HTTP handler. It is exposed separately so tests
// can drive the handlers without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/format", s.handleFormat)
	r.Post("/v1/parse", s.handleParse)

	return r
}

// Serve starts the API server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://%s", addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger tags each request with an ID, echoes it in the
// X-Request-Id header, and logs the request on completion.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
