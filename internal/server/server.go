// Package server exposes layouts over HTTP and drives interactive sessions
// over websockets.
//
// Routes:
//
//	GET  /status/            liveness check
//	POST /                   store a document or corpus under a layout ID
//	GET  /layouts/{id}/svg   render one instance of a stored layout
//	GET  /ws?id=             interactive session for a layout
//	GET  /metrics            Prometheus metrics
//
// Only documents are stored. Each websocket connection lays its instance out
// afresh, and node positions changed by dragging end with the connection or
// when the client switches instance. Searches store their matches as a new
// layout and tell the client to reconnect to it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/pipeline"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = ":8080"

// maxUploadSize bounds the POST / request body.
const maxUploadSize = 10 << 20

// Config configures a Server.
type Config struct {
	Addr string
	// Standard is served to websocket clients that ask for no layout.
	// Defaults to the built-in example document.
	Standard *document.Document
	// AllowedOrigins lists websocket origins to accept. Empty accepts any.
	AllowedOrigins []string
}

// Server serves layouts and interactive sessions.
type Server struct {
	cfg      Config
	store    store.Store
	runner   *pipeline.Runner
	metrics  *Metrics
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// New creates a server. A nil runner disables artifact caching; nil metrics
// creates a private registry.
func New(cfg Config, st store.Store, runner *pipeline.Runner, metrics *Metrics, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Standard == nil {
		cfg.Standard = document.Example()
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{
		cfg:     cfg,
		store:   st,
		runner:  runner,
		metrics: metrics,
		logger:  logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/status/", s.handleStatus)
	r.Post("/", s.handleStore)
	r.Get("/layouts/{id}/svg", s.handleLayoutSVG)
	r.Get("/ws", s.handleWebsocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range s.cfg.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// logRequests logs each request and records it in the HTTP metrics under
// its route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, http.StatusText(status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(d.Seconds())
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", d, "request_id", chimiddleware.GetReqID(r.Context()))
	})
}
