package api

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/yourusername/bgrules/internal/store"
	"github.com/yourusername/bgrules/pkg/game"
)

// shutdownTimeout bounds the drain of open requests on shutdown.
const shutdownTimeout = 10 * time.Second

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string        // Host to bind to (default "localhost")
	Port           int           // Port to listen on (default 8080)
	ReadTimeout    time.Duration // Read timeout (default 30s)
	WriteTimeout   time.Duration // Write timeout (default 60s)
	IdleTimeout    time.Duration // Idle timeout (default 120s)
	MaxFastWorkers int           // Max concurrent game operations (default 100)
	MaxSlowWorkers int           // Max concurrent simulations (default 4)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	games    *game.Registry
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server. journal may be nil.
func NewServer(games *game.Registry, journal *store.Store, config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	})

	return &Server{
		config:   config,
		games:    games,
		handlers: NewHandlersWithPool(games, journal, version, pool),
		pool:     pool,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// route is one registered endpoint.
type route struct {
	pattern string
	about   string
	handler http.HandlerFunc
}

func (s *Server) routes() []route {
	h := s.handlers
	return []route{
		{"GET /api/health", "health check", h.Health},
		{"POST /api/games", "create game", h.CreateGame},
		{"GET /api/games/{id}", "game state", h.GetGame},
		{"POST /api/games/{id}/roll", "roll dice", h.Roll},
		{"POST /api/games/{id}/select", "select checker", h.Select},
		{"POST /api/games/{id}/deselect", "clear selection", h.Deselect},
		{"POST /api/games/{id}/play", "move selected checker", h.Play},
		{"POST /api/games/{id}/pass", "pass turn", h.Pass},
		{"GET /api/games/{id}/moves", "move journal", h.Moves},
		{"GET /api/games/{id}/mat", "journal as MAT text", h.MAT},
		{"GET /api/games/{id}/events", "game event stream (SSE)", h.Events},
		{"POST /api/simulate", "random self-play", h.Simulate},
		{"GET /api/simulate/stream", "self-play progress (SSE)", h.SimulateSSE},
		{"/api/ws", "WebSocket play channel", h.WebSocket},
	}
}

// Handler returns the routed API with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, r := range s.routes() {
		mux.HandleFunc(r.pattern, r.handler)
	}
	return corsMiddleware(loggingMiddleware(mux))
}

// listen builds the http.Server and logs the routes it serves.
func (s *Server) listen() *http.Server {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Printf("bgrules API server v%s listening on %s", s.version, addr)
	for _, r := range s.routes() {
		log.Printf("  %-34s %s", r.pattern, r.about)
	}
	return s.server
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	return s.listen().ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is canceled, then drains open requests for up to
// shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := s.listen()
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Printf("shutting down: %v", context.Cause(ctx))
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}

	log.Printf("server stopped (%d games in memory)", s.games.Len())
	return nil
}
