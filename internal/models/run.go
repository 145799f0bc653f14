package models

import (
	"fmt"
	"time"
)

// Run kinds recorded in the ledger.
const (
	RunKindUpdate  = "update"
	RunKindRestore = "restore"
)

// RunRecord captures the outcome of one completed run: which operation ran,
// against which owner, and the final counters. Records are written after the
// run finishes; the ledger is an audit trail, not a progress tracker.
type RunRecord struct {
	id                string
	sequence          int
	kind              string
	owner             string
	reposProcessed    int
	reposErrored      int
	releasesProcessed int
	releasesUpdated   int
	indexPath         string
	startedAt         time.Time
	finishedAt        time.Time
	createdAt         time.Time
	updatedAt         time.Time
	deletedAt         *time.Time
}

// NewRunRecord creates a run record with the given sequence number, kind, and
// owner. The repository assigns the ID on Create.
func NewRunRecord(sequence int, kind, owner string) *RunRecord {
	now := time.Now()
	return &RunRecord{
		sequence:   sequence,
		kind:       kind,
		owner:      owner,
		startedAt:  now,
		finishedAt: now,
		createdAt:  now,
		updatedAt:  now,
	}
}

// ID returns the unique identifier for this run record
func (r *RunRecord) ID() string { return r.id }

// Sequence returns the human-readable run number
func (r *RunRecord) Sequence() int { return r.sequence }

// Kind returns the run kind (update or restore)
func (r *RunRecord) Kind() string { return r.kind }

// Owner returns the organization or user the run targeted
func (r *RunRecord) Owner() string { return r.owner }

// ReposProcessed returns how many repositories completed their state machine
func (r *RunRecord) ReposProcessed() int { return r.reposProcessed }

// ReposErrored returns how many repositories were skipped on error
func (r *RunRecord) ReposErrored() int { return r.reposErrored }

// ReleasesProcessed returns how many releases the run examined
func (r *RunRecord) ReleasesProcessed() int { return r.releasesProcessed }

// ReleasesUpdated returns how many releases the run mutated
func (r *RunRecord) ReleasesUpdated() int { return r.releasesUpdated }

// IndexPath returns the path of the backup index written by the run, if any
func (r *RunRecord) IndexPath() string { return r.indexPath }

// StartedAt returns when the run began
func (r *RunRecord) StartedAt() time.Time { return r.startedAt }

// FinishedAt returns when the run completed
func (r *RunRecord) FinishedAt() time.Time { return r.finishedAt }

// CreatedAt returns when this record was created
func (r *RunRecord) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when this record was last updated
func (r *RunRecord) UpdatedAt() time.Time { return r.updatedAt }

// DeletedAt returns the soft-delete timestamp, nil for live records
func (r *RunRecord) DeletedAt() *time.Time { return r.deletedAt }

// SetID sets the record's unique identifier
func (r *RunRecord) SetID(id string) { r.id = id }

// SetCounters records the run's final counter values.
func (r *RunRecord) SetCounters(reposProcessed, reposErrored, releasesProcessed, releasesUpdated int) {
	r.reposProcessed = reposProcessed
	r.reposErrored = reposErrored
	r.releasesProcessed = releasesProcessed
	r.releasesUpdated = releasesUpdated
}

// SetIndexPath records where the consolidated backup index was written
func (r *RunRecord) SetIndexPath(path string) { r.indexPath = path }

// SetStartedAt sets when the run began
func (r *RunRecord) SetStartedAt(t time.Time) { r.startedAt = t }

// SetFinishedAt sets when the run completed
func (r *RunRecord) SetFinishedAt(t time.Time) { r.finishedAt = t }

// SetUpdatedAt sets the record's last-updated timestamp
func (r *RunRecord) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// SetCreatedAt sets the record's creation timestamp
func (r *RunRecord) SetCreatedAt(t time.Time) { r.createdAt = t }

// SetDeletedAt sets the soft-delete timestamp
func (r *RunRecord) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks the record before it is written to the ledger.
func (r *RunRecord) Validate() error {
	if r.kind != RunKindUpdate && r.kind != RunKindRestore {
		return fmt.Errorf("invalid run kind: %q", r.kind)
	}
	if r.owner == "" {
		return fmt.Errorf("run owner is required")
	}
	if r.reposProcessed < 0 || r.reposErrored < 0 || r.releasesProcessed < 0 || r.releasesUpdated < 0 {
		return fmt.Errorf("run counters cannot be negative")
	}
	if r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("run finished before it started")
	}
	return nil
}
