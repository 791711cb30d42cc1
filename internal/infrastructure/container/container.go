// Package container wires the application together with fx.
package container

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	chatapp "github.com/cocinadelpatito/v1/internal/application/chat"
	recipeapp "github.com/cocinadelpatito/v1/internal/application/recipe"
	userapp "github.com/cocinadelpatito/v1/internal/application/user"
	"github.com/cocinadelpatito/v1/internal/infrastructure/ai/gemini"
	"github.com/cocinadelpatito/v1/internal/infrastructure/cache"
	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/infrastructure/http/handlers"
	"github.com/cocinadelpatito/v1/internal/infrastructure/http/server"
	"github.com/cocinadelpatito/v1/internal/infrastructure/monitoring"
	gormrepo "github.com/cocinadelpatito/v1/internal/infrastructure/persistence/gorm"
	"github.com/cocinadelpatito/v1/internal/infrastructure/persistence/postgres"
	"github.com/cocinadelpatito/v1/internal/infrastructure/security"
	"github.com/cocinadelpatito/v1/internal/infrastructure/storage"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/cocinadelpatito/v1/pkg/healthcheck"
	"github.com/cocinadelpatito/v1/pkg/logger"
)

// Module assembles every provider and the server lifecycle.
var Module = fx.Options(
	fx.Provide(
		newLogger,
		postgres.NewConnection,
		cache.NewRedisClient,
		gormrepo.NewRecipeRepository,
		gormrepo.NewUserRepository,
		cache.NewSessionStore,
		newImageStore,
		gemini.NewClient,
		security.NewAuthService,
		recipeapp.NewRecipeService,
		userapp.NewUserService,
		chatapp.NewService,
		monitoring.NewMetrics,
		newHealthChecker,
		newRecipeHandler,
		newChatHandler,
		handlers.NewAuthHandler,
		handlers.NewUserHandler,
		newServer,
	),
	fx.Invoke(runServer),
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
	})
}

func newImageStore(cfg *config.Config, log *zap.Logger) (outbound.ImageStore, error) {
	return storage.NewS3ImageStore(cfg, log)
}

func newHealthChecker(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *zap.Logger) *healthcheck.Checker {
	checker := healthcheck.NewChecker(cfg.App.Name, 5*time.Second, log)

	checker.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	checker.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	return checker
}

func newRecipeHandler(svc inbound.RecipeService, cfg *config.Config, log *zap.Logger) *handlers.RecipeHandler {
	return handlers.NewRecipeHandler(svc, cfg.Limits.MaxContentBytes, log)
}

func newChatHandler(svc inbound.ChatService, metrics *monitoring.Metrics, cfg *config.Config, log *zap.Logger) *handlers.ChatHandler {
	return handlers.NewChatHandler(svc, metrics, cfg.Limits.MaxContentBytes, log)
}

func newServer(
	cfg *config.Config,
	auth *security.AuthService,
	recipes *handlers.RecipeHandler,
	users *handlers.UserHandler,
	authAPI *handlers.AuthHandler,
	chat *handlers.ChatHandler,
	health *healthcheck.Checker,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *server.Server {
	return server.New(server.Dependencies{
		Config:  cfg,
		Auth:    auth,
		Recipes: recipes,
		Users:   users,
		AuthAPI: authAPI,
		Chat:    chat,
		Health:  health,
		Metrics: metrics,
		Logger:  log,
	})
}

func runServer(lc fx.Lifecycle, srv *server.Server, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
