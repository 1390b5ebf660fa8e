// Package api provides the HTTP API server and handlers for the Bookshelf catalogue.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookshelfapp/bookshelf-server/internal/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	health     HealthChecks
	sseManager *sse.Manager
	sseHandler *sse.Handler
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	version    string
	startedAt  time.Time
}

// Options configures the server.
type Options struct {
	AllowedOrigins []string
	Version        string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, health HealthChecks, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services:   services,
		health:     health,
		sseManager: sseManager,
		sseHandler: sse.NewHandler(sseManager, logger),
		router:     router,
		logger:     logger,
	}

	s.setupMiddleware(opts.AllowedOrigins)

	s.version = opts.Version
	if s.version == "" {
		s.version = "1.0.0"
	}
	s.startedAt = time.Now()
	humaConfig := huma.DefaultConfig("Bookshelf API", s.version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerGenreRoutes()
	s.registerMetadataRoutes()
	s.registerSearchRoutes()
	s.registerSessionRoutes()
	s.registerPreferenceRoutes()

	// SSE is a raw stream, outside huma.
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}
