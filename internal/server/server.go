// Package server exposes the journal engine over a small JSON HTTP
// API. The owner is carried in the X-Owner header on every request.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cristal-orion/Reminor/internal/engine"
	"github.com/cristal-orion/Reminor/internal/index"
)

// DefaultOwner is assumed when a request carries no X-Owner header.
const DefaultOwner = "default"

// Server is the journal HTTP API server.
type Server struct {
	engine  *engine.Engine
	db      *index.DB
	router  chi.Router
	log     zerolog.Logger
	version string
	started time.Time
}

// New creates a new Server around an engine.
func New(e *engine.Engine, db *index.DB, version string, logger zerolog.Logger) *Server {
	s := &Server{
		engine:  e,
		db:      db,
		log:     logger,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/entries", s.handlePutEntry)
		r.Get("/entries", s.handleListEntries)
		r.Get("/entries/{date}", s.handleGetEntry)

		r.Get("/search", s.handleSearch)
		r.Get("/context", s.handleContext)

		r.Post("/rebuild", s.handleRebuild)
		r.Post("/import", s.handleImport)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
}

// owner extracts the owner ID from the request.
func owner(r *http.Request) string {
	if o := r.Header.Get("X-Owner"); o != "" {
		return o
	}
	return DefaultOwner
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"db":       dbOK,
		"semantic": s.engine.Embedder != nil,
	})
}
