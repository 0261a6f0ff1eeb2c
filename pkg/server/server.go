package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
	"github.com/kinesis-dev/kinesis/pkg/telemetry"
)

// Server is the live HTTP/WebSocket server.
type Server struct {
	config    Config
	factories map[string]kinesis.Factory
	router    chi.Router
	upgrader  websocket.Upgrader

	logger   *slog.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	observer kinesis.Observer

	mu       sync.Mutex
	sessions map[string]*Session
	http     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records session and runtime metrics on m and serves
// gatherer on /metrics.
func WithMetrics(m *telemetry.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithObserver adds an observer to every session's root controller.
func WithObserver(obs kinesis.Observer) Option {
	return func(s *Server) {
		s.observer = obs
	}
}

// New creates a Server serving the given component factories.
func New(config Config, factories map[string]kinesis.Factory, opts ...Option) *Server {
	config.applyDefaults()

	s := &Server{
		config:    config,
		factories: factories,
		logger:    slog.Default(),
		gatherer:  prometheus.DefaultGatherer,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     s.config.checkOrigin,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Components returns the registered component names in lexical order.
func (s *Server) Components() []string {
	names := make([]string, 0, len(s.factories))
	for name := range s.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.WriteTimeout,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
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

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.http
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.closeConn(websocket.CloseGoingAway, "server shutting down")
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("component")
	if name == "" {
		name = s.config.DefaultComponent
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.wsError("upgrade")
		return
	}
	conn.SetReadLimit(s.config.MaxFrameSize)

	sess := newSession(s, conn, newSessionID(), name)

	factory, ok := s.factories[name]
	if !ok {
		sess.fail(kerrors.New("K203").WithDetail("no component named %q", name))
		return
	}

	s.track(sess)
	defer s.untrack(sess)

	sess.run(factory)
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
}

func (s *Server) wsError(kind string) {
	if s.metrics != nil {
		s.metrics.WebSocketError(kind)
	}
}

// observers returns the observer handed to each root controller.
func (s *Server) observers() kinesis.Observer {
	var m kinesis.Observer
	if s.metrics != nil {
		m = s.metrics
	}
	return telemetry.Multi(m, s.observer)
}

func newSessionID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
