// Package api provides the HTTP API server and handlers for the juzzt record store.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/ratelimit"
	"github.com/juzzt/juzzt-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	services     *Services
	imageStorage *images.Storage
	router       *chi.Mux
	api          huma.API
	authLimiter  *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, imageStorage *images.Storage, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
		AllowCredentials: false,
	}))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("juzzt API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:        st,
		services:     services,
		imageStorage: imageStorage,
		router:       router,
		api:          api,
		authLimiter:  ratelimit.New(20.0/60.0, 10), // 20 auth attempts per minute per IP
		logger:       logger,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerRecordRoutes()
	s.registerSearchRoutes()
	s.registerOrderRoutes()
	s.registerPlaylistRoutes()
	s.registerRecommendationRoutes()
	s.registerAdminRoutes()

	// Locally hosted cover images are served straight off disk.
	s.router.Get("/images/{name}", s.handleServeImage)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// handleServeImage streams a locally hosted image. Served via chi directly,
// not huma, since it is a binary response.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || !s.imageStorage.Exists(name) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, s.imageStorage.Path(name))
}

// checkAuthRate rate limits authentication attempts by client IP.
func (s *Server) checkAuthRate(ip string) error {
	if ip == "" {
		return nil
	}
	if !s.authLimiter.Allow(ip) {
		s.logger.Warn("Auth rate limit exceeded", "ip", ip)
		return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
	}
	return nil
}

// extractIP picks the client IP from forwarding headers.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
