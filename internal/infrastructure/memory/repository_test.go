package memory

import (
	"context"
	"testing"

	"github.com/sp3dr4/wren/internal/domain"
)

func newRecord(t *testing.T, id int64) *domain.URL {
	t.Helper()
	url, err := domain.NewURL(id, "https://example.com")
	if err != nil {
		t.Fatalf("failed to build URL: %v", err)
	}
	return url
}

func TestMemoryRepository_Insert(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newRecord(t, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", repo.Len())
	}

	// Duplicate ids mean the sequence handed out the same value twice
	if err := repo.Insert(ctx, newRecord(t, 1)); err != domain.ErrInternal {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestMemoryRepository_AssignCode(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		if err := repo.Insert(ctx, newRecord(t, id)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}

	if err := repo.AssignCode(ctx, 1, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.AssignCode(ctx, 2, "1"); err != domain.ErrShortCodeExists {
		t.Fatalf("expected ErrShortCodeExists, got %v", err)
	}

	if err := repo.AssignCode(ctx, 99, "x"); err != domain.ErrURLNotFound {
		t.Fatalf("expected ErrURLNotFound, got %v", err)
	}
}

func TestMemoryRepository_FindByCode(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newRecord(t, 5)); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	// Unassigned records are invisible to code lookups
	found, err := repo.FindByCode(ctx, "")
	if err != nil || found != nil {
		t.Fatalf("expected no record for empty code, got %v, %v", found, err)
	}

	if err := repo.AssignCode(ctx, 5, "5"); err != nil {
		t.Fatalf("failed to assign code: %v", err)
	}

	found, err = repo.FindByCode(ctx, "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.OriginalURL != "https://example.com" || found.ID != 5 {
		t.Fatalf("unexpected record: %+v", found)
	}

	found, err = repo.FindByCode(ctx, "doesnotexist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil record, got %+v", found)
	}
}

func TestMemoryRepository_AddClicks(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, newRecord(t, 1)); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	if err := repo.AssignCode(ctx, 1, "1"); err != nil {
		t.Fatalf("failed to assign code: %v", err)
	}

	if err := repo.AddClicks(ctx, "1", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, _ := repo.FindByCode(ctx, "1")
	if found.Clicks != 3 {
		t.Fatalf("expected clicks to be 3, got %d", found.Clicks)
	}

	if err := repo.AddClicks(ctx, "notfound", 1); err != domain.ErrURLNotFound {
		t.Fatalf("expected ErrURLNotFound, got %v", err)
	}
}

func TestMemoryRepository_FindByCodeReturnsCopy(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	_ = repo.Insert(ctx, newRecord(t, 1))
	_ = repo.AssignCode(ctx, 1, "1")

	found, _ := repo.FindByCode(ctx, "1")
	found.OriginalURL = "https://mutated.example"

	again, _ := repo.FindByCode(ctx, "1")
	if again.OriginalURL != "https://example.com" {
		t.Fatalf("stored record was mutated through a returned pointer: %s", again.OriginalURL)
	}
}
