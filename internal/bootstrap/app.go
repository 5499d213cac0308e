package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"casebot/internal/bootstrap/config"
	"casebot/internal/bootstrap/database"
	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
	cacheinfra "casebot/internal/infrastructure/cache"
	"casebot/internal/infrastructure/persistence/sqlite/model"
	"casebot/internal/ports"
)

// App holds the explicitly constructed shared handles. Exactly one cache
// backend is active; the other handle stays nil.
type App struct {
	Config config.Config
	Cache  ports.Cache
	DB     *gorm.DB
	Redis  *redis.Client
}

func New(ctx context.Context, configFile string) (*App, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "loading application config", slog.String("config_file", configFile))

	cfg, err := config.Load(logCtx, configFile)
	if err != nil {
		return nil, errs.Wrap(err, "load config")
	}

	app := &App{Config: cfg}

	switch strings.ToLower(cfg.Cache.Backend) {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		app.Redis = client
		app.Cache = cacheinfra.NewRedisCache(client)
		logging.Info(logCtx, "cache backend ready",
			slog.String("backend", "redis"), slog.String("addr", cfg.Cache.RedisAddr))
	case "sqlite":
		db, err := database.Open(logCtx, cfg.Database)
		if err != nil {
			return nil, errs.Wrap(err, "open database")
		}
		app.DB = db
		app.Cache = cacheinfra.NewSQLiteCache(db)
		logging.Info(logCtx, "cache backend ready", slog.String("backend", "sqlite"))
	default:
		return nil, errors.New("unsupported cache backend " + cfg.Cache.Backend)
	}

	return app, nil
}

// InitSchema migrates the embedded cache table; only meaningful for the
// sqlite backend.
func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if a.DB == nil {
		return errors.New("sqlite backend is not active")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(&model.CacheKV{}); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

// Close releases whichever backend handle is active.
func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			return errs.Wrap(err, "close redis client")
		}
		logging.Info(logCtx, "redis connection closed")
	}

	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return errs.Wrap(err, "get sql db")
		}
		if err := sqlDB.Close(); err != nil {
			return errs.Wrap(err, "close sql db")
		}
		logging.Info(logCtx, "database connection closed")
	}

	return nil
}
