package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jobboard/apiserver/config"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/cache"
	"github.com/jobboard/apiserver/internal/db"
	"github.com/jobboard/apiserver/internal/events"
	"github.com/jobboard/apiserver/internal/handlers"
	"github.com/jobboard/apiserver/internal/hashid"
	"github.com/jobboard/apiserver/internal/logging"
	"github.com/jobboard/apiserver/internal/metrics"
	"github.com/jobboard/apiserver/internal/mq"
	"github.com/jobboard/apiserver/internal/services"
	"github.com/jobboard/apiserver/internal/storage"
	"github.com/jobboard/apiserver/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server wraps the HTTP server, its router and the connections it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	broker     *mq.MQ
}

type dependencies struct {
	db          *sql.DB
	codec       *hashid.Codec
	tokens      *auth.TokenProvider
	ratingCache services.RatingCache
	avatars     services.AvatarStore
	publisher   events.Publisher
	checks      map[string]handlers.Check
}

// New connects every configured backend and builds the router. Optional
// backends (redis, object storage, message queue) are skipped when not
// configured.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	tokens, err := auth.NewTokenProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	codec, err := hashid.New(cfg.Auth.HashIDSalt)
	if err != nil {
		return nil, fmt.Errorf("HASHID_SALT must be set outside ENV=dev: %w", err)
	}
	if cfg.Auth.HashIDSalt == config.DevHashIDSalt {
		log := logging.Get()
		log.Warn().Msg("using the development hashid salt; set HASHID_SALT before exposing ids")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s := &Server{db: dbConn}

	deps := dependencies{
		db:        dbConn,
		codec:     codec,
		tokens:    tokens,
		publisher: events.Nop{},
		checks:    map[string]handlers.Check{"postgres": dbConn.PingContext},
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			s.close()
			return nil, err
		}
		s.redis = client
		deps.ratingCache = cache.NewRatingCache(client)
		deps.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	avatars, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if avatars != nil {
		deps.avatars = avatars
	}

	broker, err := mq.Connect(ctx, cfg.Queue)
	if err != nil {
		s.close()
		return nil, err
	}
	if broker != nil {
		s.broker = broker
		deps.publisher = events.NewPublisher(broker)
	}

	log := logging.Get()
	log.Info().
		Bool("rating_cache", deps.ratingCache != nil).
		Str("storage", cfg.Storage.Backend).
		Str("mq", cfg.Queue.Backend).
		Msg("backends ready")

	s.router = newRouter(cfg, deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func newRouter(cfg config.Config, deps dependencies) *chi.Mux {
	userRepo := store.NewUserRepository(deps.db)
	jobRepo := store.NewJobRepository(deps.db)
	ratingRepo := store.NewRatingRepository(deps.db)

	userService := services.NewUserService(userRepo)
	jobService := services.NewJobService(jobRepo)
	ratingService := services.NewRatingService(ratingRepo, userRepo, jobRepo, deps.ratingCache)
	avatarService := services.NewAvatarService(userRepo, deps.avatars)

	authMiddleware := handlers.RequireAuth(deps.tokens)
	optionalAuth := handlers.OptionalAuth(deps.tokens)

	var limiter func(http.Handler) http.Handler
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter = httprate.Limit(
			cfg.HTTP.RateLimitRequests,
			cfg.HTTP.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handlers.RateLimited),
		)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger,
		metrics.Middleware,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	router.Get("/healthz", handlers.NewHealthHandler(deps.checks).Healthz)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/auth", func(r chi.Router) {
		handler := handlers.NewAuthHandler(userService, avatarService, deps.tokens, deps.codec, deps.publisher)
		handlers.AuthRouter(r, handler, limiter)
	})
	router.Route("/posts", func(r chi.Router) {
		handlers.JobRouter(r, handlers.NewJobHandler(jobService, deps.codec, deps.publisher), authMiddleware, optionalAuth)
	})
	router.Route("/search", func(r chi.Router) {
		handlers.SearchRouter(r, handlers.NewSearchHandler(jobService, deps.codec))
	})
	router.Route("/ratings", func(r chi.Router) {
		handlers.RatingRouter(r, handlers.NewRatingHandler(ratingService, deps.codec, deps.publisher), authMiddleware)
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log := logging.Get()
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases every connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
