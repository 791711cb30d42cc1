// Package server assembles the chi router and runs the HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/infrastructure/http/handlers"
	"github.com/cocinadelpatito/v1/internal/infrastructure/http/middleware"
	"github.com/cocinadelpatito/v1/internal/infrastructure/monitoring"
	"github.com/cocinadelpatito/v1/internal/infrastructure/security"
	"github.com/cocinadelpatito/v1/pkg/healthcheck"
)

// Server wraps the HTTP server and its router.
type Server struct {
	cfg         *config.Config
	httpServer  *http.Server
	rateLimiter *middleware.RateLimiter
	logger      *zap.Logger
}

// Dependencies collects everything the router needs.
type Dependencies struct {
	Config  *config.Config
	Auth    *security.AuthService
	Recipes *handlers.RecipeHandler
	Users   *handlers.UserHandler
	AuthAPI *handlers.AuthHandler
	Chat    *handlers.ChatHandler
	Health  *healthcheck.Checker
	Metrics *monitoring.Metrics
	Logger  *zap.Logger
}

// New builds the router and server.
func New(deps Dependencies) *Server {
	cfg := deps.Config
	logger := deps.Logger.Named("http-server")

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Compress(5))
	r.Use(deps.Metrics.Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	rateLimiter := middleware.NewRateLimiter(cfg.Limits.RequestsPerSec, cfg.Limits.RateBurst, logger)
	r.Use(rateLimiter.Handler)

	requireAuth := middleware.Authenticate(deps.Auth, logger)
	optionalAuth := middleware.OptionalAuthenticate(deps.Auth, logger)

	r.Get("/health", deps.Health.Handler())
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthAPI.Register)
			r.Post("/login", deps.AuthAPI.Login)
			r.Post("/logout", deps.AuthAPI.Logout)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", deps.Users.Me)
			r.Patch("/", deps.Users.Update)
			r.Post("/image", deps.Users.UploadImage)
			r.Delete("/", deps.Users.Delete)
		})

		r.Route("/recipes", func(r chi.Router) {
			// Public surfaces first; they never require a session.
			r.Get("/public", deps.Recipes.ListPublic)
			r.Get("/recent", deps.Recipes.ListRecent)
			r.Get("/discover", deps.Recipes.Discover)
			r.With(optionalAuth).Get("/{id}", deps.Recipes.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", deps.Recipes.List)
				r.Post("/", deps.Recipes.Create)
				r.Patch("/{id}", deps.Recipes.Update)
				r.Delete("/{id}", deps.Recipes.Delete)
			})
		})
	})

	// The chat relay authenticates inside the handler so the 401 is
	// guaranteed to fire before any model call.
	r.With(optionalAuth).Post("/api/chat", deps.Chat.Relay)

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
