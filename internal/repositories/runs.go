package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/models"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
)

// RunRepository implements models.Repository[*models.RunRecord] for the run ledger.
//
// Handles run record CRUD with soft delete support and kind/owner filtering.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record into the ledger with generated ID and sequence
func (r *RunRepository) Create(run *models.RunRecord) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (
			id, sequence, kind, owner, repos_processed, repos_errored,
			releases_processed, releases_updated, index_path,
			started_at, finished_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var indexPath any = run.IndexPath()
	if indexPath == "" {
		indexPath = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Kind(),
		run.Owner(),
		run.ReposProcessed(),
		run.ReposErrored(),
		run.ReleasesProcessed(),
		run.ReleasesUpdated(),
		indexPath,
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run record by ID, excluding soft-deleted records
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `
		SELECT
			id, sequence, kind, owner, repos_processed, repos_errored,
			releases_processed, releases_updated, index_path,
			started_at, finished_at, created_at, updated_at, deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

// Update modifies an existing run record
func (r *RunRepository) Update(run *models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET repos_processed = ?, repos_errored = ?, releases_processed = ?,
			releases_updated = ?, index_path = ?, started_at = ?,
			finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var indexPath any = run.IndexPath()
	if indexPath == "" {
		indexPath = nil
	}

	result, err := r.db.Exec(query,
		run.ReposProcessed(),
		run.ReposErrored(),
		run.ReleasesProcessed(),
		run.ReleasesUpdated(),
		indexPath,
		run.StartedAt(),
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run record by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves run records matching the given criteria, newest first,
// excluding soft-deleted records. Supported criteria: "kind" and "owner"
// (strings), "limit" (int, 0 means no limit).
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `
		SELECT
			id, sequence, kind, owner, repos_processed, repos_errored,
			releases_processed, releases_updated, index_path,
			started_at, finished_at, created_at, updated_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if owner, ok := criteria["owner"].(string); ok && owner != "" {
		query += " AND owner = ?"
		args = append(args, owner)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan path.
type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans one ledger row into a [models.RunRecord]
func scanRun(row scanner) (*models.RunRecord, error) {
	var (
		id                string
		sequence          int
		kind              string
		owner             string
		reposProcessed    int
		reposErrored      int
		releasesProcessed int
		releasesUpdated   int
		indexPath         sql.NullString
		startedAt         time.Time
		finishedAt        time.Time
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &kind, &owner, &reposProcessed, &reposErrored,
		&releasesProcessed, &releasesUpdated, &indexPath,
		&startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	run := models.NewRunRecord(sequence, kind, owner)
	run.SetID(id)
	run.SetCounters(reposProcessed, reposErrored, releasesProcessed, releasesUpdated)
	run.SetStartedAt(startedAt)
	run.SetFinishedAt(finishedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if indexPath.Valid {
		run.SetIndexPath(indexPath.String)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
