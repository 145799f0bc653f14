package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/models"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
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

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRunRecord(0, models.RunKindUpdate, "acme")
		run.SetCounters(3, 1, 24, 9)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRunRecord(0, models.RunKindUpdate, "acme")
		run.SetCounters(3, 1, 24, 9)
		run.SetIndexPath("backups/backup-index.json")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if retrieved.ID() != run.ID() {
			t.Errorf("expected ID %s, got %s", run.ID(), retrieved.ID())
		}
		if retrieved.Kind() != models.RunKindUpdate {
			t.Errorf("expected kind %q, got %q", models.RunKindUpdate, retrieved.Kind())
		}
		if retrieved.Owner() != "acme" {
			t.Errorf("expected owner acme, got %s", retrieved.Owner())
		}
		if retrieved.ReleasesUpdated() != 9 {
			t.Errorf("expected 9 updated releases, got %d", retrieved.ReleasesUpdated())
		}
		if retrieved.IndexPath() != "backups/backup-index.json" {
			t.Errorf("unexpected index path %q", retrieved.IndexPath())
		}
		if retrieved.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", retrieved.Sequence())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRunRecord(0, models.RunKindRestore, "acme")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetCounters(1, 0, 8, 8)
		run.SetFinishedAt(time.Now().Add(time.Minute))

		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.ReleasesProcessed() != 8 {
			t.Errorf("expected 8 processed releases, got %d", retrieved.ReleasesProcessed())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRunRecord(0, models.RunKindUpdate, "acme")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}

		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("expected error when getting deleted run")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)

		runs := []*models.RunRecord{
			models.NewRunRecord(0, models.RunKindUpdate, "acme"),
			models.NewRunRecord(0, models.RunKindUpdate, "acme"),
			models.NewRunRecord(0, models.RunKindRestore, "globex"),
		}
		for _, run := range runs {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
		if len(all) == 3 && all[0].Sequence() != 3 {
			t.Errorf("expected newest run first (sequence 3), got %d", all[0].Sequence())
		}

		restores, err := repo.List(map[string]any{"kind": models.RunKindRestore})
		if err != nil {
			t.Fatalf("failed to list filtered runs: %v", err)
		}
		if len(restores) != 1 {
			t.Errorf("expected 1 restore run, got %d", len(restores))
		}
		if len(restores) == 1 && restores[0].Owner() != "globex" {
			t.Errorf("expected owner globex, got %s", restores[0].Owner())
		}

		limited, err := repo.List(map[string]any{"limit": 2})
		if err != nil {
			t.Fatalf("failed to list limited runs: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs with limit, got %d", len(limited))
		}
	})
}

func TestRunRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("InvalidKind", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewRunRepository(db)
			run := models.NewRunRecord(0, "bogus", "acme")

			if err := repo.Create(run); err == nil {
				t.Fatal("expected validation error for invalid kind")
			}
		})

		t.Run("MissingOwner", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewRunRepository(db)
			run := models.NewRunRecord(0, models.RunKindUpdate, "")

			if err := repo.Create(run); err == nil {
				t.Fatal("expected validation error for missing owner")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewRunRepository(db)

			if _, err := repo.Get("nonexistent-id"); err == nil {
				t.Fatal("expected error when getting nonexistent run")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewRunRepository(db)
			run := models.NewRunRecord(0, models.RunKindUpdate, "acme")
			run.SetID("nonexistent-id")

			if err := repo.Update(run); err == nil {
				t.Fatal("expected error when updating nonexistent run")
			}
		})

		t.Run("NegativeCounters", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewRunRepository(db)
			run := models.NewRunRecord(0, models.RunKindUpdate, "acme")

			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}

			run.SetCounters(-1, 0, 0, 0)
			if err := repo.Update(run); err == nil {
				t.Fatal("expected validation error for negative counters")
			}
		})
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seq1, err := NextSequence(db, "runs")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}
	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "runs")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}
	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}
}
