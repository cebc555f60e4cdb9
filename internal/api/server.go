// Package api provides the HTTP API server and handlers for Bookscape.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookscape/bookscape-server/internal/ratelimit"
	"github.com/bookscape/bookscape-server/internal/service"
	"github.com/bookscape/bookscape-server/internal/sse"
	"github.com/bookscape/bookscape-server/internal/store"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Dataset   *service.DatasetService
	Views     *service.ViewService
	Selection *service.SelectionService
	Search    *service.SearchService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	services      *Services
	sseHandler    *sse.Handler
	sseManager    *sse.Manager
	router        *chi.Mux
	api           huma.API
	reloadLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseHandler *sse.Handler, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Bookscape API", "1.0.0")
	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:      st,
		services:   services,
		sseHandler: sseHandler,
		sseManager: sseManager,
		router:     router,
		api:        humaAPI,
		// Reloads re-parse the file and rebuild the search index, so they
		// are expensive; one sustained reload per 10s with a small burst.
		reloadLimiter: ratelimit.New(0.1, 3),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The views are served from a different origin than this API during
	// development.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerDatasetRoutes()
	s.registerViewRoutes()
	s.registerSelectionRoutes()
	s.registerSearchRoutes()

	// SSE stays a raw chi route: huma's response model does not fit a
	// long-lived event stream.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}
