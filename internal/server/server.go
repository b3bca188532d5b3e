package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sage/config"
)

// Answerer produces an answer for a validated question. It never fails:
// pipeline problems surface as user-facing message strings.
type Answerer interface {
	Answer(ctx context.Context, question, modelRef string) string
}

// Collection is the read view the server needs for health reporting.
type Collection interface {
	Available() bool
}

// Backend reports whether the completion backend is reachable.
type Backend interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP boundary. It validates and rate-limits questions
// before handing them to the pipeline, and translates every failure
// into a fixed friendly message.
type Server struct {
	pipeline   Answerer
	collection Collection
	backend    Backend
	models     config.ModelsConfig
	limiter    *ipLimiter
	maxBody    int64
	timeout    time.Duration
	router     chi.Router
}

func New(pipeline Answerer, collection Collection, backend Backend, cfg *config.Config) *Server {
	s := &Server{
		pipeline:   pipeline,
		collection: collection,
		backend:    backend,
		models:     cfg.Models,
		limiter:    newIPLimiter(cfg.Server.RatePerMinute, cfg.Server.RateBurst),
		maxBody:    cfg.Server.MaxBodyBytes,
		timeout:    time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)

	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Get("/models", s.handleModels)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
