// Package httpapi exposes the job store over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Execution holds the store lock for the whole run, so the write timeout has
// to cover a full synchronous judging.
const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 10 * time.Minute
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	router *mux.Router
	srv    *http.Server
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	metrics prometheus.Gatherer
	exit    func()
}

// WithMetrics serves the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) { o.metrics = g }
}

// WithExit enables POST /internal/exit, which calls exit after responding.
func WithExit(exit func()) Option {
	return func(o *options) { o.exit = exit }
}

func NewServer(addr string, svc Service, logger *slog.Logger, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := mux.NewRouter()
	r.Use(logRequests(logger))
	NewHandler(svc, logger).RegisterRoutes(r)
	if o.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if o.exit != nil {
		r.HandleFunc("/internal/exit", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			go o.exit()
		}).Methods(http.MethodPost)
	}

	return &Server{
		router: r,
		logger: logger,
		srv: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
