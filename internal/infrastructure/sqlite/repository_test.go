package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sp3dr4/wren/internal/domain"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(filepath.Join(t.TempDir(), "wren.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func insertRecord(t *testing.T, repo *URLRepository, id int64, originalURL string) {
	t.Helper()

	url, err := domain.NewURL(id, originalURL)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), url))
}

func TestSQLiteRepository_InsertAndAssign(t *testing.T) {
	repo := NewURLRepository(openTestDB(t))
	ctx := context.Background()

	insertRecord(t, repo, 1, "https://example.com")

	// Orphans without a code are not reachable by code
	found, err := repo.FindByCode(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.AssignCode(ctx, 1, "1"))

	found, err = repo.FindByCode(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(1), found.ID)
	assert.Equal(t, "https://example.com", found.OriginalURL)
	assert.Equal(t, "1", found.ShortCode)
	assert.Equal(t, int64(0), found.Clicks)
	assert.WithinDuration(t, time.Now(), found.CreatedAt, time.Minute)
}

func TestSQLiteRepository_Constraints(t *testing.T) {
	repo := NewURLRepository(openTestDB(t))
	ctx := context.Background()

	insertRecord(t, repo, 1, "https://one.example")
	insertRecord(t, repo, 2, "https://two.example")

	url, err := domain.NewURL(1, "https://dup.example")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(ctx, url), domain.ErrInternal)

	require.NoError(t, repo.AssignCode(ctx, 1, "abc"))
	assert.ErrorIs(t, repo.AssignCode(ctx, 2, "abc"), domain.ErrShortCodeExists)
	assert.ErrorIs(t, repo.AssignCode(ctx, 99, "xyz"), domain.ErrURLNotFound)
}

func TestSQLiteRepository_FindByCodeAbsent(t *testing.T) {
	repo := NewURLRepository(openTestDB(t))

	found, err := repo.FindByCode(context.Background(), "doesnotexist")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteRepository_AddClicks(t *testing.T) {
	repo := NewURLRepository(openTestDB(t))
	ctx := context.Background()

	insertRecord(t, repo, 1, "https://example.com")
	require.NoError(t, repo.AssignCode(ctx, 1, "1"))

	require.NoError(t, repo.AddClicks(ctx, "1", 2))
	require.NoError(t, repo.AddClicks(ctx, "1", 3))

	found, err := repo.FindByCode(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), found.Clicks)

	assert.ErrorIs(t, repo.AddClicks(ctx, "nope", 1), domain.ErrURLNotFound)
}

func TestSQLiteRepository_ClosedDatabase(t *testing.T) {
	db := openTestDB(t)
	repo := NewURLRepository(db)
	require.NoError(t, db.Close())

	_, err := repo.FindByCode(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Error(t, repo.HealthCheck(context.Background()))
}

func TestSQLiteSequence_Next(t *testing.T) {
	db := openTestDB(t)
	seq := NewSequence(db, "urlId")
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Counters are independent per name
	other, err := NewSequence(db, "other").Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestSQLiteSequence_ConcurrentNext(t *testing.T) {
	const callers = 100

	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO sequences (name, value) VALUES ('urlId', 500)`)
	require.NoError(t, err)

	values := make([]int64, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			v, err := NewSequence(db, "urlId").Next(ctx)
			values[i] = v
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, callers)
	var maxValue int64
	for _, v := range values {
		require.False(t, seen[v], "value %d handed out twice", v)
		seen[v] = true
		maxValue = max(maxValue, v)
	}
	assert.Equal(t, int64(500+callers), maxValue)
}
