package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DatabaseMemory, cfg.Database.Type)
	assert.Equal(t, SequenceDatabase, cfg.Sequence.Backend)
	assert.Equal(t, "urlId", cfg.Sequence.Name)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 200*time.Millisecond, cfg.Cache.OpTimeout)
	assert.Equal(t, "http://localhost:8080/api/urls", cfg.App.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Clicks.FlushInterval)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.Mongo.URI)
	assert.Equal(t, "wren", cfg.Database.Mongo.Database)
	assert.Equal(t, "wren", cfg.Metrics.Namespace)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_SQLITE_PATH", "/tmp/wren-test.db")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("APP_BASE_URL", "https://wr.en")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DatabaseSQLite, cfg.Database.Type)
	assert.Equal(t, "/tmp/wren-test.db", cfg.Database.SQLite.Path)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "https://wr.en", cfg.App.BaseURL)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	content := []byte(`
server:
  port: "9090"
database:
  type: mongo
  mongo:
    uri: mongodb://localhost:27017
sequence:
  backend: redis
clicks:
  enabled: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DatabaseMongo, cfg.Database.Type)
	assert.Equal(t, "wren", cfg.Database.Mongo.Database)
	assert.Equal(t, SequenceRedis, cfg.Sequence.Backend)
	assert.False(t, cfg.Clicks.Enabled)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_InvalidConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_TYPE", "cassandra")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Type: DatabaseMemory},
			Sequence: SequenceConfig{Backend: SequenceDatabase, Name: "urlId"},
			Cache:    CacheConfig{TTL: time.Hour, Redis: RedisConfig{Addr: "localhost:6379"}},
			Clicks:   ClicksConfig{Enabled: true, FlushInterval: time.Second},
			App:      AppConfig{BaseURL: "http://localhost:8080/api/urls"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Database.Type = DatabasePostgres },
			wantErr: "database.postgres.url",
		},
		{
			name:    "mongo without uri",
			mutate:  func(c *Config) { c.Database.Type = DatabaseMongo },
			wantErr: "database.mongo.uri",
		},
		{
			name:    "unknown sequence backend",
			mutate:  func(c *Config) { c.Sequence.Backend = "zookeeper" },
			wantErr: "unsupported sequence backend",
		},
		{
			name: "redis sequence without addr",
			mutate: func(c *Config) {
				c.Sequence.Backend = SequenceRedis
				c.Cache.Redis.Addr = ""
			},
			wantErr: "cache.redis.addr",
		},
		{
			name:    "empty sequence name",
			mutate:  func(c *Config) { c.Sequence.Name = "" },
			wantErr: "sequence.name",
		},
		{
			name: "enabled cache with zero ttl",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.TTL = 0
			},
			wantErr: "cache.ttl",
		},
		{
			name:    "zero flush interval",
			mutate:  func(c *Config) { c.Clicks.FlushInterval = 0 },
			wantErr: "clicks.flush_interval",
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.App.BaseURL = "" },
			wantErr: "app.base_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
