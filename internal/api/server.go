// Package api provides the HTTP control surface over a running simulation
// world: snapshot reads, command submission, the WebSocket live feed, and
// Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/PossumXI/Poseidon/internal/livefeed"
	"github.com/PossumXI/Poseidon/internal/sim"
)

// Config holds server configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8094",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server exposes a world over HTTP.
type Server struct {
	httpServer *http.Server
	world      *sim.World
	streamer   *livefeed.Streamer
	logger     logrus.FieldLogger
}

// NewServer creates the API server.
func NewServer(cfg Config, world *sim.World, streamer *livefeed.Streamer, logger logrus.FieldLogger) *Server {
	s := &Server{world: world, streamer: streamer, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/ships", s.handleShips)
		r.Get("/ships/{id}", s.handleShip)
		r.Post("/commands", s.handleCommand)
	})

	r.Get("/ws/live", s.streamer.HandleWebSocket)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("API server starting")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Snapshot())
}

func (s *Server) handleShips(w http.ResponseWriter, r *http.Request) {
	snap := s.world.Snapshot()
	writeJSON(w, http.StatusOK, snap.Ships)
}

func (s *Server) handleShip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ship id"})
		return
	}
	snap := s.world.Snapshot()
	for i := range snap.Ships {
		if snap.Ships[i].ID == id {
			writeJSON(w, http.StatusOK, snap.Ships[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "ship not found"})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd sim.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed command"})
		return
	}
	// Validation happens inside the tick; rejections surface in the event
	// stream rather than here.
	s.world.Enqueue(cmd)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
