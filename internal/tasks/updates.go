package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Verify Phase = iota
	FetchReleases
	Backup
	UpdateRelease
	BuildIndex
	Restore
)

func (p Phase) String() string {
	switch p {
	case Verify:
		return "verify"
	case FetchReleases:
		return "fetch_releases"
	case Backup:
		return "backup"
	case UpdateRelease:
		return "update_release"
	case BuildIndex:
		return "build_index"
	case Restore:
		return "restore"
	default:
		return ""
	}
}

func verifyRepoUpdate(step, total int, repoPath string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Verify,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Verifying %s...", step, total, repoPath),
	}
}

func fetchReleasesUpdate(step, total int, repoPath string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReleases,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching releases for %s...", step, total, repoPath),
	}
}

func backupWrittenUpdate(step, total int, path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Backup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Backed up %d releases to %s", count, path),
		Data:    path,
	}
}

func updateReleaseUpdate(step, total int, tag string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateRelease,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Updating release %s...", step, total, tag),
	}
}

func releaseSkippedUpdate(step, total int, tag string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateRelease,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] No mentions to rewrite in %s", step, total, tag),
	}
}

func buildIndexUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildIndex,
		Step:    1,
		Total:   1,
		Message: "Rebuilding backup index...",
	}
}

func restoreReleaseUpdate(step, total int, tag string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Restore,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Restoring release %s...", step, total, tag),
	}
}
