package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/backup"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/mentions"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/services"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
)

// RepoStatus classifies how an update run finished for one repository.
type RepoStatus int

const (
	StatusDone RepoStatus = iota
	StatusNotFound
	StatusVerifyError
	StatusFetchError
	StatusBackupFailed
	StatusAborted
)

func (s RepoStatus) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusNotFound:
		return "not_found"
	case StatusVerifyError:
		return "verify_error"
	case StatusFetchError:
		return "fetch_error"
	case StatusBackupFailed:
		return "backup_failed"
	case StatusAborted:
		return "aborted"
	default:
		return ""
	}
}

// ReleaseUpdateResult records the outcome for a single release.
type ReleaseUpdateResult struct {
	ID      int64  // Release identifier on the remote
	TagName string // Git tag of the release
	Changed bool   // Whether the body was rewritten
	Err     error  // Update error, nil on success or skip
}

// RepoUpdateResult contains the outcome of updating one repository.
type RepoUpdateResult struct {
	Owner         string
	Repo          string
	Status        RepoStatus
	BackupPath    string                // Path of the pre-mutation backup, empty when no releases
	TotalReleases int                   // Releases fetched
	UpdatedCount  int                   // Releases whose body changed and was written
	SkippedCount  int                   // Releases with no mentions to rewrite
	FailedCount   int                   // Releases whose write failed
	Releases      []ReleaseUpdateResult // Per-release detail
	Err           error                 // Repository-level error for non-Done statuses
}

// FullName returns the owner/repo path for display.
func (r RepoUpdateResult) FullName() string {
	return r.Owner + "/" + r.Repo
}

// UpdateRunResult aggregates a full mention-migration run across every
// whitelisted repository.
type UpdateRunResult struct {
	Repos           []RepoUpdateResult
	TotalRepos      int
	CompletedRepos  int // Repositories fully processed
	MissingRepos    int // Repositories the provider reported as not found
	ErroredRepos    int // Repositories aborted by verify, fetch, or backup errors
	TotalReleases   int
	UpdatedReleases int
	SkippedReleases int
	FailedReleases  int
	IndexPath       string // Path of the rebuilt backup index
	IndexErr        error  // Index rebuild failure, recorded but never fatal
}

// ReleasePreview holds the before and after body of one release for a
// dry run.
type ReleasePreview struct {
	ID      int64
	TagName string
	Name    string
	Before  string
	After   string
	Changed bool
}

// PreviewResult contains a dry-run preview for one repository. No mutating
// call is ever made while producing it.
type PreviewResult struct {
	Owner         string
	Repo          string
	Repository    *services.Repository
	BackupPath    string // Preview backup under the test root
	BackupErr     error  // Backup failure, recorded but never fatal for a preview
	TotalReleases int
	ChangedCount  int
	Releases      []ReleasePreview
}

// ReleaseRestoreResult records the outcome of restoring a single release.
type ReleaseRestoreResult struct {
	ID      int64  // Live release identifier the body was written to
	TagName string
	Skipped bool  // Tag present in the backup but absent on the remote
	Err     error // Write error, nil on success or skip
}

// RestoreResult contains the outcome of restoring a repository's release
// bodies from a backup record.
type RestoreResult struct {
	Owner         string
	Repo          string
	RestoredCount int
	SkippedCount  int
	FailedCount   int
	Releases      []ReleaseRestoreResult
}

// MigrationEngine defines the mention-migration operations over releases.
type MigrationEngine interface {
	// Update rewrites mentions across every listed repository, backing each
	// repository up before its first mutating call.
	Update(ctx context.Context, mapping *mentions.Mapping, repos []string, progress chan<- ProgressUpdate) (*UpdateRunResult, error)

	// Preview computes the rewrite for one repository without mutating any
	// release, writing a backup under the test root.
	Preview(ctx context.Context, mapping *mentions.Mapping, repoPath string, progress chan<- ProgressUpdate) (*PreviewResult, error)

	// Restore writes release bodies from a backup record back to the remote,
	// matching releases by tag name.
	Restore(ctx context.Context, record *backup.Record, progress chan<- ProgressUpdate) (*RestoreResult, error)
}

// ReleaseEngine implements MigrationEngine against a forge service and a
// backup manager.
type ReleaseEngine struct {
	service      services.Service
	backups      *backup.Manager
	releasePacer *Pacer
	repoPacer    *Pacer
	pageSize     int
}

// EngineOpts configures pacing and page size. Nil pacers never wait; a
// non-positive page size requests the provider maximum.
type EngineOpts struct {
	ReleasePacer *Pacer
	RepoPacer    *Pacer
	PageSize     int
}

// NewReleaseEngine creates a ReleaseEngine with the provided dependencies.
func NewReleaseEngine(service services.Service, backups *backup.Manager, opts EngineOpts) *ReleaseEngine {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &ReleaseEngine{
		service:      service,
		backups:      backups,
		releasePacer: opts.ReleasePacer,
		repoPacer:    opts.RepoPacer,
		pageSize:     pageSize,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReleaseEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Update processes every repository in order. A failure inside one
// repository never aborts the run; only context cancellation does. The
// backup index is rebuilt once at the end, and an index failure is recorded
// on the result rather than returned.
func (e *ReleaseEngine) Update(ctx context.Context, mapping *mentions.Mapping, repos []string, progress chan<- ProgressUpdate) (*UpdateRunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: forge service not initialized", shared.ErrServiceUnavailable)
	}
	if mapping == nil || mapping.Len() == 0 {
		return nil, fmt.Errorf("%w: username mapping is empty", shared.ErrInvalidInput)
	}

	result := &UpdateRunResult{TotalRepos: len(repos)}

	for i, repoPath := range repos {
		if i > 0 {
			if err := e.repoPacer.Wait(ctx); err != nil {
				return result, err
			}
		}

		repoResult := e.updateRepository(ctx, mapping, repoPath, i+1, len(repos), progress)
		result.Repos = append(result.Repos, repoResult)

		switch repoResult.Status {
		case StatusDone:
			result.CompletedRepos++
		case StatusNotFound:
			result.MissingRepos++
		default:
			result.ErroredRepos++
		}
		result.TotalReleases += repoResult.TotalReleases
		result.UpdatedReleases += repoResult.UpdatedCount
		result.SkippedReleases += repoResult.SkippedCount
		result.FailedReleases += repoResult.FailedCount

		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	if e.backups != nil {
		e.sendProgress(progress, buildIndexUpdate())
		path, err := e.backups.BuildIndex()
		result.IndexPath = path
		result.IndexErr = err
	}

	return result, nil
}

// updateRepository runs the per-repository state machine: verify, fetch,
// backup, update. A backup failure stops the repository before any write.
func (e *ReleaseEngine) updateRepository(ctx context.Context, mapping *mentions.Mapping, repoPath string, step, total int, progress chan<- ProgressUpdate) RepoUpdateResult {
	result := RepoUpdateResult{Status: StatusDone}

	owner, repo, err := shared.SplitRepoPath(repoPath)
	if err != nil {
		result.Status = StatusVerifyError
		result.Err = err
		result.Owner = repoPath
		return result
	}
	result.Owner = owner
	result.Repo = repo

	e.sendProgress(progress, verifyRepoUpdate(step, total, repoPath))
	if _, err := e.service.VerifyRepository(ctx, owner, repo); err != nil {
		if errors.Is(err, shared.ErrRepoNotFound) {
			result.Status = StatusNotFound
		} else {
			result.Status = StatusVerifyError
		}
		result.Err = err
		return result
	}

	e.sendProgress(progress, fetchReleasesUpdate(step, total, repoPath))
	releases, err := e.service.ListReleases(ctx, owner, repo, e.pageSize)
	if err != nil {
		result.Status = StatusFetchError
		result.Err = err
		return result
	}
	result.TotalReleases = len(releases)
	if len(releases) == 0 {
		return result
	}

	if e.backups != nil {
		path, err := e.backups.Write(owner, repo, releases, backup.KindRelease)
		if err != nil {
			result.Status = StatusBackupFailed
			result.Err = fmt.Errorf("refusing to update %s without a backup: %w", repoPath, err)
			return result
		}
		result.BackupPath = path
		e.sendProgress(progress, backupWrittenUpdate(step, total, path, len(releases)))
	}

	for i, release := range releases {
		updated := mentions.Substitute(release.Body, mapping)
		if updated == release.Body {
			result.SkippedCount++
			result.Releases = append(result.Releases, ReleaseUpdateResult{ID: release.ID, TagName: release.TagName})
			e.sendProgress(progress, releaseSkippedUpdate(i+1, len(releases), release.TagName))
			continue
		}

		if err := e.releasePacer.Wait(ctx); err != nil {
			result.Status = StatusAborted
			result.Err = err
			result.FailedCount++
			result.Releases = append(result.Releases, ReleaseUpdateResult{ID: release.ID, TagName: release.TagName, Err: err})
			return result
		}

		e.sendProgress(progress, updateReleaseUpdate(i+1, len(releases), release.TagName))
		if _, err := e.service.UpdateReleaseBody(ctx, owner, repo, release.ID, updated); err != nil {
			result.FailedCount++
			result.Releases = append(result.Releases, ReleaseUpdateResult{ID: release.ID, TagName: release.TagName, Err: err})
			continue
		}
		result.UpdatedCount++
		result.Releases = append(result.Releases, ReleaseUpdateResult{ID: release.ID, TagName: release.TagName, Changed: true})
	}

	return result
}

// Preview computes before/after bodies for one repository without touching
// the remote beyond read calls. The preview backup lands under the test
// root; a backup failure is recorded on the result since nothing is at risk.
func (e *ReleaseEngine) Preview(ctx context.Context, mapping *mentions.Mapping, repoPath string, progress chan<- ProgressUpdate) (*PreviewResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: forge service not initialized", shared.ErrServiceUnavailable)
	}
	if mapping == nil || mapping.Len() == 0 {
		return nil, fmt.Errorf("%w: username mapping is empty", shared.ErrInvalidInput)
	}

	owner, repo, err := shared.SplitRepoPath(repoPath)
	if err != nil {
		return nil, err
	}
	result := &PreviewResult{Owner: owner, Repo: repo}

	e.sendProgress(progress, verifyRepoUpdate(1, 1, repoPath))
	repository, err := e.service.VerifyRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	result.Repository = repository

	e.sendProgress(progress, fetchReleasesUpdate(1, 1, repoPath))
	releases, err := e.service.ListReleases(ctx, owner, repo, e.pageSize)
	if err != nil {
		return nil, err
	}
	result.TotalReleases = len(releases)

	if e.backups != nil && len(releases) > 0 {
		path, err := e.backups.Write(owner, repo, releases, backup.KindTest)
		result.BackupPath = path
		result.BackupErr = err
		if err == nil {
			e.sendProgress(progress, backupWrittenUpdate(1, 1, path, len(releases)))
		}
	}

	for _, release := range releases {
		after := mentions.Substitute(release.Body, mapping)
		preview := ReleasePreview{
			ID:      release.ID,
			TagName: release.TagName,
			Name:    release.Name,
			Before:  release.Body,
			After:   after,
			Changed: after != release.Body,
		}
		if preview.Changed {
			result.ChangedCount++
		}
		result.Releases = append(result.Releases, preview)
	}

	return result, nil
}

// Restore writes every release body from the record back to the remote.
// Releases are matched by tag name; tags missing on the remote are skipped,
// and a failed write never stops the remaining releases.
func (e *ReleaseEngine) Restore(ctx context.Context, record *backup.Record, progress chan<- ProgressUpdate) (*RestoreResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: forge service not initialized", shared.ErrServiceUnavailable)
	}
	if record == nil || len(record.Releases) == 0 {
		return nil, fmt.Errorf("%w: backup record has no releases", shared.ErrInvalidInput)
	}

	owner, repo, err := shared.SplitRepoPath(record.Repository)
	if err != nil {
		return nil, err
	}
	result := &RestoreResult{Owner: owner, Repo: repo}

	e.sendProgress(progress, fetchReleasesUpdate(1, 1, record.Repository))
	live, err := e.service.ListReleases(ctx, owner, repo, e.pageSize)
	if err != nil {
		return nil, err
	}

	liveByTag := make(map[string]services.Release, len(live))
	for _, release := range live {
		liveByTag[release.TagName] = release
	}

	total := len(record.Releases)
	for i, saved := range record.Releases {
		target, ok := liveByTag[saved.TagName]
		if !ok {
			result.SkippedCount++
			result.Releases = append(result.Releases, ReleaseRestoreResult{TagName: saved.TagName, Skipped: true})
			continue
		}

		if err := e.releasePacer.Wait(ctx); err != nil {
			result.FailedCount++
			result.Releases = append(result.Releases, ReleaseRestoreResult{ID: target.ID, TagName: saved.TagName, Err: err})
			return result, err
		}

		e.sendProgress(progress, restoreReleaseUpdate(i+1, total, saved.TagName))
		if _, err := e.service.UpdateReleaseBody(ctx, owner, repo, target.ID, saved.Body); err != nil {
			result.FailedCount++
			result.Releases = append(result.Releases, ReleaseRestoreResult{ID: target.ID, TagName: saved.TagName, Err: err})
			continue
		}
		result.RestoredCount++
		result.Releases = append(result.Releases, ReleaseRestoreResult{ID: target.ID, TagName: saved.TagName})
	}

	return result, nil
}
