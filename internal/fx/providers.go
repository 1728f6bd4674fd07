package fx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/sp3dr4/wren/config"
	"github.com/sp3dr4/wren/internal/application"
	"github.com/sp3dr4/wren/internal/clicks"
	"github.com/sp3dr4/wren/internal/domain"
	cacheImpl "github.com/sp3dr4/wren/internal/infrastructure/cache"
	memoryRepo "github.com/sp3dr4/wren/internal/infrastructure/memory"
	mongoRepo "github.com/sp3dr4/wren/internal/infrastructure/mongo"
	postgresRepo "github.com/sp3dr4/wren/internal/infrastructure/postgres"
	redisInfra "github.com/sp3dr4/wren/internal/infrastructure/redis"
	sqliteRepo "github.com/sp3dr4/wren/internal/infrastructure/sqlite"
	"github.com/sp3dr4/wren/internal/pkg/metrics"
)

const (
	connectTimeout = 10 * time.Second
	closeTimeout   = 5 * time.Second
)

// ProvideLogger creates and configures the application logger
func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StorageResult is the record store backend together with the id sequence
// that lives in the same database.
type StorageResult struct {
	fx.Out

	Repository domain.URLRepository
	Sequence   domain.Sequence `name:"database_sequence"`
}

// ProvideStorage opens the configured database and builds its repository
// and sequence.
func ProvideStorage(cfg *config.Config, logger *slog.Logger) (StorageResult, error) {
	name := cfg.Sequence.Name

	switch cfg.Database.Type {
	case config.DatabaseMemory:
		logger.Info("Using in-memory repository")
		return StorageResult{
			Repository: memoryRepo.NewURLRepository(),
			Sequence:   memoryRepo.NewSequence(name),
		}, nil

	case config.DatabaseSQLite:
		logger.Info("Using SQLite repository", "path", cfg.Database.SQLite.Path)
		db, err := sqliteRepo.Open(cfg.Database.SQLite.Path, logger)
		if err != nil {
			return StorageResult{}, err
		}
		return StorageResult{
			Repository: sqliteRepo.NewURLRepository(db),
			Sequence:   sqliteRepo.NewSequence(db, name),
		}, nil

	case config.DatabasePostgres:
		logger.Info("Using PostgreSQL repository")
		db, err := postgresRepo.Open(cfg.Database.Postgres.URL, logger)
		if err != nil {
			return StorageResult{}, err
		}
		return StorageResult{
			Repository: postgresRepo.NewURLRepository(db),
			Sequence:   postgresRepo.NewSequence(db, name),
		}, nil

	case config.DatabaseMongo:
		logger.Info("Using MongoDB repository", "database", cfg.Database.Mongo.Database)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		db, err := mongoRepo.Connect(ctx, cfg.Database.Mongo.URI, cfg.Database.Mongo.Database)
		if err != nil {
			return StorageResult{}, err
		}
		return StorageResult{
			Repository: mongoRepo.NewURLRepository(db),
			Sequence:   mongoRepo.NewSequence(db, name),
		}, nil

	default:
		return StorageResult{}, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// ProvideRedisClient returns nil when neither the cache nor the sequence
// uses redis.
func ProvideRedisClient(cfg *config.Config, logger *slog.Logger) *goredis.Client {
	if !cfg.UsesRedis() {
		return nil
	}

	logger.Info("Using Redis", "addr", cfg.Cache.Redis.Addr, "db", cfg.Cache.Redis.DB)
	opts := redisInfra.ClientOptions{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	}
	// The sequence is not best-effort; give it the client defaults instead
	// of the cache's tight per-operation budget.
	if cfg.Cache.Enabled && cfg.Sequence.Backend != config.SequenceRedis {
		opts.DialTimeout = cfg.Cache.OpTimeout
		opts.ReadTimeout = cfg.Cache.OpTimeout
		opts.WriteTimeout = cfg.Cache.OpTimeout
	}
	return redisInfra.NewClient(opts)
}

type SequenceParams struct {
	fx.In

	Config           *config.Config
	DatabaseSequence domain.Sequence `name:"database_sequence"`
	Redis            *goredis.Client `optional:"true"`
	Logger           *slog.Logger
}

// ProvideSequence picks the id allocator named by sequence.backend.
func ProvideSequence(params SequenceParams) (domain.Sequence, error) {
	switch params.Config.Sequence.Backend {
	case config.SequenceDatabase:
		return params.DatabaseSequence, nil
	case config.SequenceRedis:
		if params.Redis == nil {
			return nil, fmt.Errorf("redis sequence requested but no redis client configured")
		}
		params.Logger.Info("Allocating ids with Redis INCR", "sequence", params.Config.Sequence.Name)
		return redisInfra.NewSequence(params.Redis, params.Config.Sequence.Name), nil
	default:
		return nil, fmt.Errorf("unsupported sequence backend: %s", params.Config.Sequence.Backend)
	}
}

type CacheParams struct {
	fx.In

	Config *config.Config
	Redis  *goredis.Client `optional:"true"`
	Logger *slog.Logger
}

// ProvideCache returns the redis cache when enabled, a no-op otherwise.
// An unreachable cache at startup is logged, not fatal.
func ProvideCache(params CacheParams) domain.Cache {
	if !params.Config.Cache.Enabled || params.Redis == nil {
		params.Logger.Info("Cache disabled")
		return cacheImpl.NewNoOpCache()
	}

	c := redisInfra.NewRedisCache(params.Redis, params.Logger, params.Config.Cache.OpTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		params.Logger.Warn("Cache unreachable at startup, resolves will fall back to the record store", "error", err)
	}

	return c
}

// ProvideMetricsRegistry returns the prometheus registry when metrics are enabled
func ProvideMetricsRegistry(cfg *config.Config) (metrics.Registry, error) {
	if !cfg.Metrics.Enabled {
		return metrics.NewNoOpRegistry(), nil
	}
	return metrics.NewPrometheusRegistry(cfg.Metrics)
}

// ProvideClickTracker builds the click buffer flushed into the repository.
func ProvideClickTracker(cfg *config.Config, repo domain.URLRepository, registry metrics.Registry, logger *slog.Logger) *clicks.Tracker {
	return clicks.NewTracker(repo, cfg.Clicks.FlushInterval, registry, logger)
}

func ProvideClickRecorder(cfg *config.Config, tracker *clicks.Tracker) domain.ClickRecorder {
	if !cfg.Clicks.Enabled {
		return clicks.NoOpRecorder{}
	}
	return tracker
}

func ProvideServiceConfig(cfg *config.Config) application.Config {
	return application.Config{
		BaseURL:  cfg.App.BaseURL,
		CacheTTL: cfg.Cache.TTL,
	}
}

// RepositoryParams holds the parameters needed for repository lifecycle management
type RepositoryParams struct {
	fx.In

	Repository domain.URLRepository
	Logger     *slog.Logger
}

// RegisterRepositoryHooks registers repository lifecycle hooks with FX
func RegisterRepositoryHooks(lc fx.Lifecycle, params RepositoryParams) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := params.Repository.Close(); err != nil {
				params.Logger.Error("Failed to close repository resources", "error", err)
				return err
			}
			params.Logger.Info("Repository resources closed successfully")
			return nil
		},
	})
}

type RedisParams struct {
	fx.In

	Client *goredis.Client `optional:"true"`
	Logger *slog.Logger
}

// RegisterRedisHooks closes the redis client, if any, on shutdown.
func RegisterRedisHooks(lc fx.Lifecycle, params RedisParams) {
	if params.Client == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := params.Client.Close(); err != nil {
				params.Logger.Error("Failed to close redis client", "error", err)
				return err
			}
			params.Logger.Info("Redis client closed")
			return nil
		},
	})
}

// RegisterClickHooks runs the click flusher for the lifetime of the app. It
// is stopped before the repository closes so the final flush can land.
func RegisterClickHooks(lc fx.Lifecycle, cfg *config.Config, tracker *clicks.Tracker, logger *slog.Logger) {
	if !cfg.Clicks.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			tracker.Start()
			logger.Info("Click tracker started", "flush_interval", cfg.Clicks.FlushInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, closeTimeout)
			defer cancel()
			return tracker.Stop(ctx)
		},
	})
}
