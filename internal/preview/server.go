package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/internal/service"
	"github.com/frikeldon/openscad/pkg/core/health"
	"github.com/frikeldon/openscad/pkg/core/version"
)

// probeSource is interpreted by the engine health check
const probeSource = "cube(1);"

// WebSocket upgrader with permissive settings for local editors
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Config holds server configuration
type Config struct {
	Addr         string
	PingInterval time.Duration
	RunTimeout   time.Duration
	// MaxMessageSize bounds a single client message in bytes
	MaxMessageSize int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8765",
		PingInterval:   30 * time.Second,
		RunTimeout:     5 * time.Second,
		MaxMessageSize: 2 << 20,
	}
}

// Server is the live preview server. Editors connect over a websocket,
// send sources and receive the cleaned CSG tree or a positioned diagnostic.
type Server struct {
	config     Config
	service    *service.Service
	health     *health.Registry
	logger     *mdwlog.Logger
	httpServer *http.Server

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client is one websocket session. Writes are serialized by mu since the
// read loop and the ping loop both write.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(resp)
}

func (c *client) ping(deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// New creates a new preview server
func New(cfg Config, svc *service.Service, logger *mdwlog.Logger) *Server {
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaults.RunTimeout
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if logger == nil {
		logger = mdwlog.GetDefault()
	}

	s := &Server{
		config:  cfg,
		service: svc,
		health:  health.NewRegistry("openscad-preview", version.Preview),
		logger:  logger.WithField("component", "preview"),
		clients: make(map[*client]struct{}),
	}

	s.health.Register(health.ProbeCheck("engine", cfg.RunTimeout/2, func(ctx context.Context) error {
		_, err := s.service.Engine().Interpret(ctx, probeSource)
		return err
	}))
	if history := svc.History(); history != nil {
		s.health.Register(health.ProbeCheck("history", 0, func(ctx context.Context) error {
			_, err := history.Statistics(ctx)
			return err
		}))
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.Handle("/health", s.health.Handler(s.config.RunTimeout))
	return loggingMiddleware(s.logger, mux)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *mdwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("HTTP request", mdwlog.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// Start listens on the configured address and serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info("Starting preview server", mdwlog.Fields{"addr": s.config.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve serves on an existing listener until Stop is called
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting preview server", mdwlog.Fields{"addr": l.Addr().String()})
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every session and gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping preview server")

	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	return s.httpServer.Shutdown(ctx)
}

// Clients returns the number of connected sessions
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast interprets source once and pushes the outcome to every session
func (s *Server) Broadcast(ctx context.Context, name, source string) *service.Outcome {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()
	out := s.service.Interpret(runCtx, name, source)
	resp := outcomeResponse("", out)

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(resp); err != nil {
			s.logger.WarnWithErr("Broadcast send failed", err, mdwlog.Fields{"session": c.id})
		}
	}
	return out
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnWithErr("WebSocket upgrade failed", err)
		return
	}

	c := &client{id: uuid.New().String(), conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close()
	}()

	s.handleConnection(r.Context(), c)
}

// handleConnection runs the read loop of one session. Interpret requests
// are answered in order.
func (s *Server) handleConnection(ctx context.Context, c *client) {
	logger := s.logger.WithField("session", c.id)
	logger.Info("WebSocket connection established", mdwlog.Fields{"remote": c.conn.RemoteAddr().String()})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readTimeout := 2 * s.config.PingInterval
	c.conn.SetReadLimit(s.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go s.pingLoop(ctx, c)

	if err := c.send(WSResponse{Type: TypeHello, Payload: HelloPayload{Session: c.id, Version: version.Preview}}); err != nil {
		logger.WarnWithErr("WebSocket send error", err)
		return
	}

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnWithErr("WebSocket read error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var resp WSResponse
		switch msg.Type {
		case TypePing:
			resp = WSResponse{Type: TypePong, ID: msg.ID}

		case TypeInterpret:
			var payload InterpretPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				resp = errorResponse(msg.ID, "invalid_payload", "Invalid interpret payload")
				break
			}
			resp = s.interpret(ctx, msg.ID, payload)

		default:
			resp = errorResponse(msg.ID, "unknown_type", "Unknown message type: "+msg.Type)
		}

		if err := c.send(resp); err != nil {
			logger.WarnWithErr("WebSocket send error", err)
			return
		}
	}
}

func (s *Server) interpret(ctx context.Context, id string, payload InterpretPayload) WSResponse {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()
	return outcomeResponse(id, s.service.Interpret(runCtx, payload.Name, payload.Source))
}

// pingLoop keeps the connection alive until ctx is done
func (s *Server) pingLoop(ctx context.Context, c *client) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(time.Now().Add(10 * time.Second)); err != nil {
				return
			}
		}
	}
}

func errorResponse(id, code, message string) WSResponse {
	return WSResponse{
		Type:    TypeError,
		ID:      id,
		Payload: WSErrorPayload{Code: code, Message: message},
	}
}
