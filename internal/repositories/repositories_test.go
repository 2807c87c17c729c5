package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestResult(style string) *models.PersistedResult {
	return models.NewPersistedResult(0, models.StyleResult{
		CanonicalURL: "http://127.0.0.1:8000/static/results/a.png",
		DownloadURL:  "http://127.0.0.1:8000/download/a.png",
		Style:        style,
	}, "room.png", 640, 480)
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "results")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "results")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected monotonic sequence, got %d then %d", first, second)
	}
}

func TestResultRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		result := newTestResult("minimal")

		if err := repo.Create(result); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}

		if result.ID() == "" {
			t.Error("result ID should be set after creation")
		}
		if result.Sequence() == 0 {
			t.Error("result sequence should be assigned on creation")
		}
	})

	t.Run("Create rejects busted URL", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		result := models.NewPersistedResult(0, models.StyleResult{
			CanonicalURL: "http://x/a.png?t=1700000000000",
		}, "room.png", 0, 0)

		if err := repo.Create(result); err == nil {
			t.Error("expected validation error for cache-busted URL")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		result := newTestResult("minimal")

		if err := repo.Create(result); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}

		retrieved, err := repo.Get(result.ID())
		if err != nil {
			t.Fatalf("failed to get result: %v", err)
		}

		if retrieved.CanonicalURL() != result.CanonicalURL() {
			t.Errorf("expected URL %s, got %s", result.CanonicalURL(), retrieved.CanonicalURL())
		}
		if retrieved.Width() != 640 || retrieved.Height() != 480 {
			t.Errorf("expected 640x480, got %dx%d", retrieved.Width(), retrieved.Height())
		}
	})

	t.Run("Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)

		if _, err := repo.Latest(); !errors.Is(err, shared.ErrNoResult) {
			t.Errorf("expected ErrNoResult on empty store, got %v", err)
		}

		older := newTestResult("minimal")
		newer := newTestResult("rustic")
		if err := repo.Create(older); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}
		if err := repo.Create(newer); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("failed to get latest result: %v", err)
		}
		if latest.Style() != "rustic" {
			t.Errorf("expected newest result, got style %s", latest.Style())
		}

		if err := repo.Delete(newer.ID()); err != nil {
			t.Fatalf("failed to delete result: %v", err)
		}

		latest, err = repo.Latest()
		if err != nil {
			t.Fatalf("failed to get latest after delete: %v", err)
		}
		if latest.Style() != "minimal" {
			t.Errorf("expected older result after deleting newest, got style %s", latest.Style())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		result := newTestResult("minimal")

		if err := repo.Create(result); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}
		if err := repo.Delete(result.ID()); err != nil {
			t.Fatalf("failed to delete result: %v", err)
		}

		if _, err := repo.Get(result.ID()); err == nil {
			t.Error("expected error when getting deleted result")
		}

		if err := repo.Delete(result.ID()); err == nil {
			t.Error("deleting an already-deleted result should fail")
		}
	})

	t.Run("Purge", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		for range 3 {
			if err := repo.Create(newTestResult("minimal")); err != nil {
				t.Fatalf("failed to create result: %v", err)
			}
		}

		purged, err := repo.Purge()
		if err != nil {
			t.Fatalf("failed to purge results: %v", err)
		}
		if purged != 3 {
			t.Errorf("expected 3 purged results, got %d", purged)
		}

		if _, err := repo.Latest(); !errors.Is(err, shared.ErrNoResult) {
			t.Errorf("expected ErrNoResult after purge, got %v", err)
		}

		purged, err = repo.Purge()
		if err != nil {
			t.Fatalf("failed to purge empty store: %v", err)
		}
		if purged != 0 {
			t.Errorf("expected 0 purged on empty store, got %d", purged)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		if err := repo.Create(newTestResult("minimal")); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}
		if err := repo.Create(newTestResult("rustic")); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list results: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 results, got %d", len(all))
		}

		filtered, err := repo.List(map[string]any{"style": "rustic"})
		if err != nil {
			t.Fatalf("failed to list filtered results: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Style() != "rustic" {
			t.Errorf("expected one rustic result, got %v", filtered)
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatalf("failed to list limited results: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 result with limit, got %d", len(limited))
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewResultRepository(db)
		result := newTestResult("minimal")
		if err := repo.Create(result); err != nil {
			t.Fatalf("failed to create result: %v", err)
		}

		if err := repo.Update(result); err != nil {
			t.Fatalf("failed to update result: %v", err)
		}

		missing := newTestResult("minimal")
		missing.SetID("missing-id")
		if err := repo.Update(missing); err == nil {
			t.Error("expected error updating missing result")
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Save and Current", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)

		if _, err := repo.Current(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated on empty table, got %v", err)
		}

		err := repo.Save(models.Session{Email: "user@example.com", Cookie: "tok123"})
		if err != nil {
			t.Fatalf("failed to save session: %v", err)
		}

		session, err := repo.Current()
		if err != nil {
			t.Fatalf("failed to get current session: %v", err)
		}
		if session.Cookie != "tok123" {
			t.Errorf("expected cookie tok123, got %s", session.Cookie)
		}
		if session.Kind != "user" {
			t.Errorf("expected default kind user, got %s", session.Kind)
		}
		if session.ID == "" {
			t.Error("expected generated session ID")
		}
	})

	t.Run("Save replaces previous session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.Save(models.Session{Cookie: "old"}); err != nil {
			t.Fatalf("failed to save first session: %v", err)
		}
		if err := repo.Save(models.Session{Cookie: "new"}); err != nil {
			t.Fatalf("failed to save second session: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
			t.Fatalf("failed to count sessions: %v", err)
		}
		if count != 1 {
			t.Errorf("expected single session row, got %d", count)
		}

		session, err := repo.Current()
		if err != nil {
			t.Fatalf("failed to get current session: %v", err)
		}
		if session.Cookie != "new" {
			t.Errorf("expected replaced cookie new, got %s", session.Cookie)
		}
	})

	t.Run("Save rejects empty cookie", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.Save(models.Session{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.Save(models.Session{Cookie: "tok"}); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}

		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear sessions: %v", err)
		}
		if _, err := repo.Current(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after clear, got %v", err)
		}

		if err := repo.Clear(); err != nil {
			t.Errorf("clearing an empty table should not fail: %v", err)
		}
	})
}

func TestGenerationLogRepository(t *testing.T) {
	t.Run("Append and List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGenerationLogRepository(db)

		err := repo.Append(models.GenerationRecord{
			Style:           "minimal",
			InstructionsLen: 12,
			ResultURL:       "http://x/a.png",
		})
		if err != nil {
			t.Fatalf("failed to append record: %v", err)
		}
		err = repo.Append(models.GenerationRecord{
			Style:     "rustic",
			ResultURL: "",
			Status:    "error",
		})
		if err != nil {
			t.Fatalf("failed to append record: %v", err)
		}

		records, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}

		if records[0].Style != "rustic" || records[0].Status != "error" {
			t.Errorf("expected newest record first, got %+v", records[0])
		}
		if records[1].Status != "success" {
			t.Errorf("expected default status success, got %s", records[1].Status)
		}
	})

	t.Run("List with limit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGenerationLogRepository(db)
		for range 5 {
			if err := repo.Append(models.GenerationRecord{Style: "minimal", ResultURL: "http://x/a.png"}); err != nil {
				t.Fatalf("failed to append record: %v", err)
			}
		}

		records, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("Count", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGenerationLogRepository(db)
		count, err := repo.Count()
		if err != nil {
			t.Fatalf("failed to count records: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 records, got %d", count)
		}

		if err := repo.Append(models.GenerationRecord{Style: "minimal", ResultURL: "http://x/a.png"}); err != nil {
			t.Fatalf("failed to append record: %v", err)
		}

		count, err = repo.Count()
		if err != nil {
			t.Fatalf("failed to count records: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 record, got %d", count)
		}
	})
}
