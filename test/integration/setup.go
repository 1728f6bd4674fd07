package integration

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	mongoContainer "github.com/testcontainers/testcontainers-go/modules/mongodb"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	redisContainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sp3dr4/wren/internal/application"
	"github.com/sp3dr4/wren/internal/clicks"
	"github.com/sp3dr4/wren/internal/domain"
	mongoRepo "github.com/sp3dr4/wren/internal/infrastructure/mongo"
	postgresRepo "github.com/sp3dr4/wren/internal/infrastructure/postgres"
	redisInfra "github.com/sp3dr4/wren/internal/infrastructure/redis"
	"github.com/sp3dr4/wren/internal/pkg/metrics"
	"github.com/sp3dr4/wren/migrations"
)

const (
	testBaseURL  = "http://localhost:8080/api/urls"
	sequenceName = "urlId"
	cacheTimeout = 500 * time.Millisecond
)

var (
	sharedPostgres *postgresContainer.PostgresContainer
	sharedRedis    *redisContainer.RedisContainer
	sharedMongo    *mongoContainer.MongoDBContainer

	sharedDB      *sqlx.DB
	sharedClient  *goredis.Client
	sharedMongoDB *mongo.Database

	postgresOnce sync.Once
	redisOnce    sync.Once
	mongoOnce    sync.Once
	cleanupOnce  sync.Once
)

// TestEnvironment holds the test setup
type TestEnvironment struct {
	DB          *sqlx.DB
	RedisClient *goredis.Client
	Repo        *CountingRepository
	Clicks      *clicks.Tracker
	Service     *application.URLService
}

// CountingRepository counts record store reads so tests can tell cache hits
// from store lookups.
type CountingRepository struct {
	domain.URLRepository
	reads atomic.Int64
}

func (r *CountingRepository) FindByCode(ctx context.Context, code string) (*domain.URL, error) {
	r.reads.Add(1)
	return r.URLRepository.FindByCode(ctx, code)
}

func (r *CountingRepository) Reads() int64 {
	return r.reads.Load()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}
}

// SetupTestEnvironment starts shared PostgreSQL and Redis containers, applies
// the schema, empties both stores and returns a service wired to them.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	skipIfShort(t)

	db := setupPostgres(t)
	client := setupRedis(t)

	cleanDatabase(t, db)
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	cache := redisInfra.NewRedisCache(client, discardLogger(), cacheTimeout)
	return newEnvironment(db, client, cache)
}

// SetupTestEnvironmentWithCache is SetupTestEnvironment with a caller-supplied cache.
func SetupTestEnvironmentWithCache(t *testing.T, cache domain.Cache) *TestEnvironment {
	skipIfShort(t)

	db := setupPostgres(t)
	cleanDatabase(t, db)

	return newEnvironment(db, nil, cache)
}

func newEnvironment(db *sqlx.DB, client *goredis.Client, cache domain.Cache) *TestEnvironment {
	repo := &CountingRepository{URLRepository: postgresRepo.NewURLRepository(db)}
	seq := postgresRepo.NewSequence(db, sequenceName)
	tracker := clicks.NewTracker(repo, time.Hour, nil, discardLogger())

	store := application.NewRecordStore(seq, repo)
	service := application.NewURLService(store, cache, tracker, metrics.NewNoOpRegistry(), application.Config{
		BaseURL:  testBaseURL,
		CacheTTL: time.Hour,
	})

	return &TestEnvironment{
		DB:          db,
		RedisClient: client,
		Repo:        repo,
		Clicks:      tracker,
		Service:     service,
	}
}

func setupPostgres(t *testing.T) *sqlx.DB {
	postgresOnce.Do(func() {
		ctx := context.Background()

		container, err := postgresContainer.Run(ctx,
			"postgres:16-alpine",
			postgresContainer.WithDatabase("wren_test"),
			postgresContainer.WithUsername("test"),
			postgresContainer.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		sharedPostgres = container

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("failed to get connection string: %v", err)
		}

		db, err := sqlx.Connect("postgres", connStr)
		if err != nil {
			t.Fatalf("failed to connect to database: %v", err)
		}
		sharedDB = db

		if err := migrations.Up(db.DB, migrations.DialectPostgres, discardLogger()); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	})

	if sharedDB == nil {
		t.Fatal("postgres container is not available")
	}
	return sharedDB
}

func setupRedis(t *testing.T) *goredis.Client {
	redisOnce.Do(func() {
		ctx := context.Background()

		container, err := redisContainer.Run(ctx, "redis:7-alpine")
		if err != nil {
			t.Fatalf("failed to start redis container: %v", err)
		}
		sharedRedis = container

		connStr, err := container.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("failed to get redis connection string: %v", err)
		}

		opts, err := goredis.ParseURL(connStr)
		if err != nil {
			t.Fatalf("failed to parse redis url: %v", err)
		}
		sharedClient = redisInfra.NewClient(redisInfra.ClientOptions{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
	})

	if sharedClient == nil {
		t.Fatal("redis container is not available")
	}
	return sharedClient
}

// SetupMongo starts a shared MongoDB container and returns an empty database.
func SetupMongo(t *testing.T) *mongo.Database {
	skipIfShort(t)

	mongoOnce.Do(func() {
		ctx := context.Background()

		container, err := mongoContainer.Run(ctx, "mongo:7")
		if err != nil {
			t.Fatalf("failed to start mongodb container: %v", err)
		}
		sharedMongo = container

		uri, err := container.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("failed to get mongodb connection string: %v", err)
		}

		db, err := mongoRepo.Connect(ctx, uri, "wren_test")
		if err != nil {
			t.Fatalf("failed to connect to mongodb: %v", err)
		}
		sharedMongoDB = db
	})

	if sharedMongoDB == nil {
		t.Fatal("mongodb container is not available")
	}

	ctx := context.Background()
	for _, name := range []string{"urls", "counters"} {
		if _, err := sharedMongoDB.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
	return sharedMongoDB
}

// CleanupSharedResources should be called once at the end of all tests
func CleanupSharedResources() {
	cleanupOnce.Do(func() {
		ctx := context.Background()
		if sharedDB != nil {
			_ = sharedDB.Close()
		}
		if sharedClient != nil {
			_ = sharedClient.Close()
		}
		if sharedMongoDB != nil {
			_ = sharedMongoDB.Client().Disconnect(ctx)
		}
		if sharedPostgres != nil {
			_ = sharedPostgres.Terminate(ctx)
		}
		if sharedRedis != nil {
			_ = sharedRedis.Terminate(ctx)
		}
		if sharedMongo != nil {
			_ = sharedMongo.Terminate(ctx)
		}
	})
}

// cleanDatabase truncates all tables to ensure test isolation
func cleanDatabase(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE urls, sequences")
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}
