// Package api exposes the recipe services over HTTP: huma operations on a
// chi router, every body wrapped in the versioned response envelope.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recipebox/recipe-api/internal/http/response"
	"github.com/recipebox/recipe-api/internal/ratelimit"
)

// rateLimitIdleTTL is how long an idle client IP keeps its bucket.
const rateLimitIdleTTL = 10 * time.Minute

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins   []string
	AuthPerMinute int // requests per client IP on login, refresh and registration
	AuthBurst     int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	health          map[string]HealthChecker
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, health map[string]HealthChecker, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		services:        services,
		health:          health,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: ratelimit.New(opts.AuthPerMinute, opts.AuthBurst, rateLimitIdleTTL),
	}

	s.setupMiddleware(opts)
	s.api = newHumaAPI(s.router)
	s.setupRoutes()

	return s
}

func newHumaAPI(router chi.Router) huma.API {
	config := huma.DefaultConfig("Recipe API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	api := humachi.New(router, config)
	RegisterErrorHandler()
	return api
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, e.g. for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(metricsMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
	})

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerRecipeRoutes()
	s.registerEntityRoutes()
}
