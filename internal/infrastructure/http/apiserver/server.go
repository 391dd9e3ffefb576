// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/foodgram/internal/infrastructure/monitoring"
	"github.com/alchemorsel/foodgram/pkg/healthcheck"
)

// Dependencies is everything the server routes to. Metrics and Health are
// optional.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Services handlers.Services
	Tokens   middleware.TokenValidator
	Metrics  *monitoring.MetricsCollector
	Health   *healthcheck.HealthCheck
}

// APIServer serves the REST API
type APIServer struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	limiter *middleware.RateLimiter
	deps    Dependencies
}

// NewAPIServer creates a new API server instance
func NewAPIServer(deps Dependencies) *APIServer {
	s := &APIServer{
		config: deps.Config,
		logger: deps.Logger.Named("http"),
		deps:   deps,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:        monitoring.TraceHandler(s.router, "foodgram-api"),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures global middleware, probes and the API
func (s *APIServer) setupRoutes() *chi.Mux {
	cfg := s.config
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, cfg.Monitoring.HealthCheckPath, cfg.Monitoring.ReadinessPath, cfg.Monitoring.MetricsPath))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if cfg.Server.EnableCORS {
		r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	}
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.HTTPMiddleware)
	}
	if cfg.RateLimit.Enable {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval, s.rateObserver(), s.logger)
		r.Use(s.limiter.Handler)
	}
	if cfg.Server.EnableCompression {
		compressor := chimiddleware.NewCompressor(5, "application/json", "text/plain", "application/yaml")
		compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
			return brotli.NewWriterLevel(w, level)
		})
		r.Use(compressor.Handler)
	}
	r.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))

	if s.deps.Health != nil {
		r.Get(cfg.Monitoring.HealthCheckPath, s.deps.Health.Handler())
		r.Get(cfg.Monitoring.ReadinessPath, s.deps.Health.ReadinessHandler())
		r.Get("/live", s.deps.Health.LivenessHandler())
	}
	if s.deps.Metrics != nil && cfg.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, cfg.Monitoring.MetricsPath, s.deps.Metrics.Handler())
	}

	r.Route("/api", s.setupAPIRoutes)

	return r
}

// setupAPIRoutes configures the REST endpoints
func (s *APIServer) setupAPIRoutes(r chi.Router) {
	h := handlers.NewAPIHandlers(s.deps.Services, s.logger)
	docs := OpenAPIHandler{}

	r.Use(middleware.RequireJSON(s.logger))

	r.Get("/docs", docs.ServeDocs)
	r.Get("/docs/openapi.yaml", docs.ServeSpec)

	// Public routes; a valid token still personalizes flags
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(s.deps.Tokens, s.logger))

		r.Get("/tags", h.ListTags)
		r.Get("/tags/{id}", h.GetTag)
		r.Get("/ingredients", h.ListIngredients)
		r.Get("/ingredients/{id}", h.GetIngredient)

		r.Get("/recipes", h.ListRecipes)
		r.Get("/recipes/{id}", h.GetRecipe)

		r.With(middleware.LimitByIP(s.config.RateLimit.RegistrationLimit, s.config.RateLimit.RegistrationWindow,
			s.rateObserver(), s.logger)).Post("/users", h.Register)
		r.Get("/users/{id}", h.GetUser)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.deps.Tokens, s.logger))

		r.Post("/recipes", h.CreateRecipe)
		r.Patch("/recipes/{id}", h.UpdateRecipe)
		r.Delete("/recipes/{id}", h.DeleteRecipe)
		r.Get("/recipes/download_shopping_cart", h.DownloadShoppingCart)
		r.Post("/recipes/{id}/favorite", h.AddFavorite)
		r.Delete("/recipes/{id}/favorite", h.RemoveFavorite)
		r.Post("/recipes/{id}/shopping_cart", h.AddToShoppingCart)
		r.Delete("/recipes/{id}/shopping_cart", h.RemoveFromShoppingCart)

		r.Get("/users/me", h.Me)
		r.Get("/users/subscriptions", h.ListSubscriptions)
		r.Post("/users/{id}/subscribe", h.Subscribe)
		r.Delete("/users/{id}/subscribe", h.Unsubscribe)
	})
}

func (s *APIServer) rateObserver() middleware.RateLimitObserver {
	if s.deps.Metrics == nil {
		return nil
	}
	return s.deps.Metrics
}

// Handler returns the routed, traced handler
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops. A graceful
// shutdown is not reported as an error.
func (s *APIServer) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	if limit := s.config.Server.MaxConnections; limit > 0 {
		ln = netutil.LimitListener(ln, limit)
	}

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Server returns the underlying HTTP server instance
func (s *APIServer) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}
