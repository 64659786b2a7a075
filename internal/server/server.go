package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/engine"
	"github.com/tariqmb/rudud/internal/knowledge"
	"github.com/tariqmb/rudud/internal/llm"
)

// Config holds server configuration.
type Config struct {
	Host     string
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server exposes the response pipeline over HTTP.
type Server struct {
	cfg        Config
	engine     *engine.Engine
	businesses *business.Store
	retriever  *knowledge.Retriever
	indexer    knowledge.Indexer
	health     *llm.HealthStore
	log        *logrus.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies. businesses may be nil, which
// disables the management endpoints; indexer may be nil when no embedding
// credential is configured.
func New(cfg Config, eng *engine.Engine, businesses *business.Store, retriever *knowledge.Retriever,
	indexer knowledge.Indexer, health *llm.HealthStore, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		cfg:        cfg,
		engine:     eng,
		businesses: businesses,
		retriever:  retriever,
		indexer:    indexer,
		health:     health,
		log:        log,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/respond", s.handleRespond)
		r.Post("/dialect", s.handleDialect)
		r.Get("/providers", s.handleProviders)

		if s.businesses != nil {
			r.Post("/businesses", s.handleCreateBusiness)
			r.Get("/businesses/{businessID}", s.handleGetBusiness)
			r.Post("/businesses/{businessID}/knowledge", s.handleAddKnowledge)
		}
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.WithField("addr", addr).Info("rudud server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
