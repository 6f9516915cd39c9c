package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/reactive"
	"github.com/vango-dev/hxstate/pkg/render"
	"github.com/vango-dev/hxstate/pkg/telemetry"
)

// Options configures what a Server serves.
type Options struct {
	// Page is the HTML document every session starts from.
	Page []byte

	// Binding is the registrar template for each session. Its Scheduler
	// field is ignored; every session gets its own runtime.
	Binding binding.Options

	// Render configures page output.
	Render render.RendererConfig

	// Metrics, when set, records sessions, setups and effect runs and is
	// served at ServerConfig.MetricsPath.
	Metrics *telemetry.Metrics

	// Tracer wraps setup and messages in spans. Default: NewTracer("").
	Tracer *telemetry.Tracer
}

// Server serves a page whose bindings run on the server. GET / renders a
// fresh copy; /ws opens a live session that accepts state writes and replies
// with the re-rendered page.
type Server struct {
	config   *ServerConfig
	page     []byte
	binding  binding.Options
	renderer *render.Renderer
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer

	sessions   *SessionManager
	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server.
func New(config *ServerConfig, opts Options) *Server {
	config = config.withDefaults()

	s := &Server{
		config:   config,
		page:     opts.Page,
		binding:  opts.Binding,
		renderer: render.NewRenderer(opts.Render),
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		sessions: NewSessionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default().With("component", "server"),
	}
	if s.tracer == nil {
		s.tracer = telemetry.NewTracer("")
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.HandlePage)
	r.Get("/ws", s.HandleWebSocket)
	r.Get("/healthz", s.HandleHealth)
	if s.metrics != nil {
		r.Handle(s.config.MetricsPath, s.metrics.Handler())
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HandlePage renders the page with every effect applied once.
func (s *Server) HandlePage(w http.ResponseWriter, r *http.Request) {
	defer reactive.ReleaseGoroutine()

	sess, err := s.newSession(r.Context())
	if err != nil {
		s.logger.Error("page setup failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sess.Close()

	html, err := sess.Render()
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}
