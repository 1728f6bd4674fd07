package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sequence SequenceConfig `mapstructure:"sequence"`
	Cache    CacheConfig    `mapstructure:"cache"`
	App      AppConfig      `mapstructure:"app"`
	Clicks   ClicksConfig   `mapstructure:"clicks"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Type     string         `mapstructure:"type"` // memory, sqlite, postgres, mongo
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// SequenceConfig selects where numeric ids are allocated. "database" uses the
// configured record store, "redis" uses INCR on the cache server.
type SequenceConfig struct {
	Backend string `mapstructure:"backend"`
	Name    string `mapstructure:"name"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	OpTimeout time.Duration `mapstructure:"op_timeout"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AppConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type ClicksConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Path           string `mapstructure:"path"`
	Namespace      string `mapstructure:"namespace"`
	Subsystem      string `mapstructure:"subsystem"`
	CollectRuntime bool   `mapstructure:"collect_runtime"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

const (
	DatabaseMemory   = "memory"
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"

	SequenceDatabase = "database"
	SequenceRedis    = "redis"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wren/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("database.type", DatabaseMemory)
	v.SetDefault("database.sqlite.path", "./data/wren.db")
	v.SetDefault("database.postgres.url", "")
	v.SetDefault("database.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo.database", "wren")

	v.SetDefault("sequence.backend", SequenceDatabase)
	v.SetDefault("sequence.name", "urlId")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.op_timeout", "200ms")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("app.base_url", "http://localhost:8080/api/urls")

	v.SetDefault("clicks.enabled", true)
	v.SetDefault("clicks.flush_interval", "5s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "wren")
	v.SetDefault("metrics.subsystem", "shortener")
	v.SetDefault("metrics.collect_runtime", true)

	v.SetDefault("logging.level", "info")
}

// Validate reports configuration combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseMemory, DatabaseSQLite:
	case DatabasePostgres:
		if c.Database.Postgres.URL == "" {
			return errors.New("database.postgres.url is required for postgres")
		}
	case DatabaseMongo:
		if c.Database.Mongo.URI == "" {
			return errors.New("database.mongo.uri is required for mongo")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Database.Type)
	}

	switch c.Sequence.Backend {
	case SequenceDatabase:
	case SequenceRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required for the redis sequence")
		}
	default:
		return fmt.Errorf("unsupported sequence backend: %q", c.Sequence.Backend)
	}

	if c.Sequence.Name == "" {
		return errors.New("sequence.name must not be empty")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}
	if c.Clicks.Enabled && c.Clicks.FlushInterval <= 0 {
		return errors.New("clicks.flush_interval must be positive")
	}
	if c.App.BaseURL == "" {
		return errors.New("app.base_url must not be empty")
	}

	return nil
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Cache.Enabled || c.Sequence.Backend == SequenceRedis
}
