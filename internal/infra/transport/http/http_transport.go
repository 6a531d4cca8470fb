package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkrupp/bookstore/internal/infra/logging"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":8080"`
	// RoutePrefix is prepended to every API route ("/api/signup")
	RoutePrefix string `env:"ROUTE_PREFIX" default:"/api"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" default:"10s"`
	// ShutdownTimeout bounds how long in-flight requests may take to drain
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// Route binds a method-qualified pattern ("POST /login") to its handler.
type Route struct {
	Pattern string
	Handler http.HandlerFunc
}

// HTTPTransport is a service's HTTP surface. ServeHTTP serves the routes
// without prefix; Routes exposes them for mounting on a shared server.
type HTTPTransport interface {
	http.Handler
	Routes() []Route
}

// NewServeMux creates a mux serving the given routes, each under prefix.
func NewServeMux(prefix string, routes []Route) *http.ServeMux {
	mux := http.NewServeMux()

	for _, route := range routes {
		mux.HandleFunc(PrefixPattern(prefix, route.Pattern), route.Handler)
	}

	return mux
}

// PrefixPattern inserts prefix in front of the path of a ServeMux pattern,
// keeping an optional leading method: ("/api", "POST /login") is "POST /api/login".
func PrefixPattern(prefix, pattern string) string {
	prefix = strings.TrimRight(prefix, "/")

	if method, path, ok := strings.Cut(pattern, " "); ok {
		return method + " " + prefix + path
	}

	return prefix + pattern
}

// NewHandler assembles the server handler: the transports' routes under
// cfg.RoutePrefix, GET /health and GET /metrics, wrapped in the standard
// middleware chain (tracing, logging, panic rescue, metrics).
func NewHandler(cfg HTTPTransportConfig, reg *prometheus.Registry, transports ...HTTPTransport) http.Handler {
	log := logging.GetLogger("infra.transport.http")
	metrics := NewMetrics(reg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HandleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog: logging.GetLogLogger(log, logging.LevelError),
	}))

	for _, transport := range transports {
		for _, route := range transport.Routes() {
			pattern := PrefixPattern(cfg.RoutePrefix, route.Pattern)
			mux.Handle(pattern, MetricsMiddleware(route.Handler, metrics, pattern))
		}
	}

	var handler http.Handler = mux

	handler = RescueingMiddleware(handler, log)
	handler = LoggingMiddleware(handler, log)
	handler = TracingMiddleware(handler)

	return handler
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe listens on cfg.ServerAddr and serves handler until ctx is cancelled.
func ListenAndServe(ctx context.Context, handler http.Handler, cfg HTTPTransportConfig) error {
	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return Serve(ctx, sock, handler, cfg)
}

// Serve serves handler on sock. When ctx is cancelled the server stops
// accepting connections and waits up to cfg.ShutdownTimeout for in-flight
// requests. Returns nil after a clean shutdown.
func Serve(ctx context.Context, sock net.Listener, handler http.Handler, cfg HTTPTransportConfig) (err error) {
	log := logging.GetLogger("infra.transport.http")

	//nolint:exhaustruct
	server := &http.Server{
		Handler:           handler,
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Serve(sock)
	}()

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()

		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
