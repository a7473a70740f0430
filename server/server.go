package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/poiesic/graphkb/graph"
	"github.com/poiesic/graphkb/ingestion"
	"github.com/poiesic/graphkb/kb"
)

// Config carries the dependencies of the HTTP server.
type Config struct {
	Service  *kb.Service
	Pipeline *ingestion.Pipeline
	Reader   *graph.Reader
	Logger   *slog.Logger
}

// Server is the JSON HTTP server for the knowledge-base service.
type Server struct {
	handler http.Handler
}

// New creates a server with all routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("kb service is required")
	}
	if cfg.Pipeline == nil {
		return nil, errors.New("ingestion pipeline is required")
	}
	if cfg.Reader == nil {
		return nil, errors.New("graph reader is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "http")
	}

	h := &handlers{
		service:  cfg.Service,
		pipeline: cfg.Pipeline,
		reader:   cfg.Reader,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /index", h.index)
	mux.HandleFunc("GET /index/{kb_id}/status", h.status)
	mux.HandleFunc("POST /query", h.query)
	mux.HandleFunc("DELETE /index/{kb_id}", h.deleteIndex)
	mux.HandleFunc("GET /indexes", h.listIndexes)
	mux.HandleFunc("GET /graph/{kb_id}", h.readGraph)

	// Middleware stack, outermost first: Recovery → Logging → CORS → Routes.
	var handler http.Handler = mux
	handler = corsMiddleware()(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
