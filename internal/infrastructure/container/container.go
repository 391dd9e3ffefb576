// Package container wires the application with Uber FX
package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/application/catalog"
	recipeapp "github.com/alchemorsel/foodgram/internal/application/recipe"
	relationapp "github.com/alchemorsel/foodgram/internal/application/relation"
	shoppingapp "github.com/alchemorsel/foodgram/internal/application/shopping"
	userapp "github.com/alchemorsel/foodgram/internal/application/user"
	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/infrastructure/events"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/foodgram/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/foodgram/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/foodgram/internal/infrastructure/security"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/healthcheck"
)

// Module provides every component of the API process. *config.Config and
// *zap.Logger are supplied by the caller.
var Module = fx.Options(
	ObservabilityModule,
	DatabaseModule,
	CacheModule,
	EventModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	fx.Invoke(RegisterHealthChecks, RegisterLifecycleHooks),
)

// ObservabilityModule provides metrics, tracing and health checks
var ObservabilityModule = fx.Provide(
	monitoring.NewMetricsCollector,
	NewTracing,
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	},
)

// DatabaseModule provides the GORM handle for the configured driver
var DatabaseModule = fx.Provide(NewDatabase)

// CacheModule provides the catalog cache
var CacheModule = fx.Provide(NewCache)

// EventModule provides the in-process event bus
var EventModule = fx.Provide(
	NewEventBus,
	func(bus *events.Bus) outbound.EventPublisher { return bus },
)

// RepositoryModule provides the GORM repositories
var RepositoryModule = fx.Provide(
	gormrepo.NewRecipeRepository,
	gormrepo.NewIngredientRepository,
	gormrepo.NewTagRepository,
	gormrepo.NewUserRepository,
	gormrepo.NewRelationRepository,
	gormrepo.NewShoppingListRepository,
)

// ServiceModule provides the application services
var ServiceModule = fx.Provide(
	NewAuthService,
	func(
		cfg *config.Config,
		recipes outbound.RecipeRepository,
		ingredients outbound.IngredientRepository,
		tags outbound.TagRepository,
		bus outbound.EventPublisher,
		log *zap.Logger,
	) inbound.RecipeService {
		return recipeapp.NewRecipeService(recipes, ingredients, tags, bus, recipeapp.Pagination{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		}, log)
	},
	func(
		cfg *config.Config,
		relations outbound.RelationRepository,
		recipes outbound.RecipeRepository,
		users outbound.UserRepository,
		bus outbound.EventPublisher,
		log *zap.Logger,
	) inbound.RelationService {
		return relationapp.NewRelationService(relations, recipes, users, bus,
			cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit, log)
	},
	shoppingapp.NewShoppingListService,
	func(
		users outbound.UserRepository,
		relations outbound.RelationRepository,
		auth *security.AuthService,
		bus outbound.EventPublisher,
		log *zap.Logger,
	) inbound.UserService {
		return userapp.NewUserService(users, relations, auth, bus, log)
	},
	func(
		cfg *config.Config,
		ingredients outbound.IngredientRepository,
		tags outbound.TagRepository,
		cache outbound.CacheRepository,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) inbound.CatalogService {
		return catalog.NewCatalogService(ingredients, tags, cache, catalog.CacheTTL{
			Tags:        cfg.Cache.TagsTTL,
			Ingredients: cfg.Cache.IngredientsTTL,
		}, metrics, log)
	},
)

// HTTPModule provides the API server
var HTTPModule = fx.Provide(
	func(
		recipes inbound.RecipeService,
		relations inbound.RelationService,
		shopping inbound.ShoppingListService,
		users inbound.UserService,
		catalogSvc inbound.CatalogService,
	) handlers.Services {
		return handlers.Services{
			Recipes:   recipes,
			Relations: relations,
			Shopping:  shopping,
			Users:     users,
			Catalog:   catalogSvc,
		}
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		services handlers.Services,
		auth *security.AuthService,
		metrics *monitoring.MetricsCollector,
		health *healthcheck.HealthCheck,
	) *apiserver.APIServer {
		return apiserver.NewAPIServer(apiserver.Dependencies{
			Config:   cfg,
			Logger:   log,
			Services: services,
			Tokens:   auth,
			Metrics:  metrics,
			Health:   health,
		})
	},
)

// Database is the opened store together with its pool
type Database struct {
	fx.Out

	DB  *gorm.DB
	SQL *sql.DB
}

// OpenDatabase opens PostgreSQL or SQLite depending on database.driver and
// returns the handle with its close function. PostgreSQL schemas are managed
// by the embedded migrations; SQLite is migrated from the GORM models.
func OpenDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, func() error, error) {
	var (
		db      *gorm.DB
		closeDB func() error
	)

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrateUp(cfg.Database, log); err != nil {
				return nil, nil, err
			}
		}
		cm, err := postgres.NewConnectionManager(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		db, closeDB = cm.GetDB(), cm.Close
	default:
		gormLog := postgres.NewGORMLogger(log.Named("sqlite"), cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)
		opened, err := sqlite.SetupDatabase(cfg.Database.Path, gormLog)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := opened.DB()
		if err != nil {
			return nil, nil, err
		}
		db, closeDB = opened, sqlDB.Close
		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
	}

	if cfg.Database.Seed {
		if err := sqlite.SeedDatabase(db); err != nil {
			log.Warn("Failed to seed catalog", zap.Error(err))
		}
	}
	return db, closeDB, nil
}

// NewDatabase provides the opened database and closes it on stop
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector) (Database, error) {
	db, closeDB, err := OpenDatabase(context.Background(), cfg, log)
	if err != nil {
		return Database{}, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		_ = closeDB()
		return Database{}, fmt.Errorf("failed to get database pool: %w", err)
	}
	metrics.RegisterDB(cfg.Database.Driver, sqlDB)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("Closing database connections")
			return closeDB()
		},
	})

	return Database{DB: db, SQL: sqlDB}, nil
}

func migrateUp(cfg config.DatabaseConfig, log *zap.Logger) error {
	migrator, err := migrations.Open(cfg.URL(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return migrator.Up()
}

// Cache is the catalog cache and, when Redis is enabled, the Redis-backed
// implementation behind it.
type Cache struct {
	fx.Out

	Repository outbound.CacheRepository
	Redis      *redis.CacheRepository
	Client     goredis.UniversalClient
}

// NewCache returns the in-memory cache, fronted by Redis when enabled.
// The memory cache stays as the fallback while Redis is unavailable.
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) Cache {
	local := memory.NewCacheRepository(time.Minute)
	lc.Append(fx.StopHook(local.Close))

	if !cfg.Redis.Enabled {
		log.Info("Using in-memory catalog cache")
		return Cache{Repository: local}
	}

	client := redis.NewClient(cfg.Redis)
	remote := redis.NewCacheRepository(client, local, redis.BreakerSettings{
		MaxFailures: cfg.Cache.BreakerFailures,
		Timeout:     cfg.Cache.BreakerTimeout,
	}, log)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := remote.Ping(ctx); err != nil {
				log.Warn("Redis unreachable, serving catalog from memory", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return remote.Close()
		},
	})
	log.Info("Using Redis catalog cache", zap.String("addr", cfg.Redis.Addr()))
	return Cache{Repository: remote, Redis: remote, Client: client}
}

// NewEventBus creates the bus with its built-in subscribers and runs it for
// the lifetime of the application.
func NewEventBus(lc fx.Lifecycle, log *zap.Logger, metrics *monitoring.MetricsCollector) (*events.Bus, error) {
	bus, err := events.NewBus(events.DefaultConfig(), log)
	if err != nil {
		return nil, err
	}
	events.CountEvents(bus, metrics)
	events.AuditLog(bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			go func() {
				if err := bus.Run(ctx); err != nil {
					log.Error("Event bus stopped", zap.Error(err))
				}
			}()
			select {
			case <-bus.Running():
				return nil
			case <-startCtx.Done():
				return startCtx.Err()
			}
		},
		OnStop: func(context.Context) error {
			cancel()
			return bus.Close()
		},
	})
	return bus, nil
}

// NewTracing installs the OTLP tracer provider when tracing is enabled
func NewTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		Endpoint:       cfg.Monitoring.OTLPEndpoint,
		Insecure:       cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(tp.Shutdown))
	return tp, nil
}

// NewAuthService provides token validation with revocations kept in the
// catalog cache.
func NewAuthService(cfg *config.Config, log *zap.Logger, cache outbound.CacheRepository) *security.AuthService {
	return security.NewAuthService(cfg.Auth, log, cache)
}

// HealthDeps are the components probed by the health endpoints
type HealthDeps struct {
	fx.In

	Health *healthcheck.HealthCheck
	SQL    *sql.DB
	Bus    *events.Bus
	Redis  *redis.CacheRepository
	Client goredis.UniversalClient
}

// RegisterHealthChecks registers the database, the event bus and, when
// enabled, Redis and its circuit breaker.
func RegisterHealthChecks(deps HealthDeps) {
	deps.Health.Register("database", healthcheck.NewDatabaseChecker(deps.SQL))
	deps.Health.Register("event_bus", events.NewHealthChecker(deps.Bus))
	if deps.Redis != nil {
		deps.Health.Register("redis", healthcheck.NewRedisChecker(deps.Client))
		deps.Health.Register("cache_breaker", healthcheck.NewBreakerChecker(deps.Redis))
	}
}

// RegisterLifecycleHooks starts the API server and drains it on shutdown
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	health *healthcheck.HealthCheck,
	server *apiserver.APIServer,
	_ *monitoring.TracingProvider,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting Foodgram",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Foodgram")
			health.PrepareShutdown()

			ctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shut down HTTP server", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
