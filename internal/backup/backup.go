// package backup implements the pre-mutation safety protocol: every
// repository's releases are snapshotted to durable storage before any
// release body is rewritten, and a consolidated index of all snapshots is
// rebuilt after each run.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/services"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
)

// Kind selects the storage root for a backup: real update runs and dry-run
// previews never share a directory tree.
type Kind int

const (
	KindRelease Kind = iota
	KindTest
)

func (k Kind) String() string {
	if k == KindTest {
		return "test"
	}
	return "release"
}

// Record is the on-disk backup document. One record is written per
// repository per run, before that repository's first mutating call, and is
// never modified afterwards.
type Record struct {
	Repository      string             `json:"repository"`
	BackupTimestamp string             `json:"backup_timestamp"`
	TotalReleases   int                `json:"total_releases"`
	Releases        []services.Release `json:"releases"`
	Note            string             `json:"note,omitempty"`
}

// Manager writes, loads, and enumerates backup records under two root
// directories: one for real runs, one for dry-run previews.
type Manager struct {
	releaseRoot string
	testRoot    string
}

// NewManager creates a Manager rooted at the given directories. Empty paths
// fall back to ./backups and ./test-backups.
func NewManager(dir, testDir string) *Manager {
	if dir == "" {
		dir = "backups"
	}
	if testDir == "" {
		testDir = "test-backups"
	}
	return &Manager{releaseRoot: dir, testRoot: testDir}
}

func (m *Manager) root(kind Kind) string {
	if kind == KindTest {
		return m.testRoot
	}
	return m.releaseRoot
}

// Write snapshots the given releases to a new backup file under
// <root>/<owner>/<repo>/ and returns its path. File names embed a UTC
// timestamp plus a short random suffix, so repeated runs never overwrite
// earlier backups. Directory creation is recursive and idempotent.
func (m *Manager) Write(owner, repo string, releases []services.Release, kind Kind) (string, error) {
	dir := filepath.Join(m.root(kind), owner, repo)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := time.Now().UTC()
	name := fmt.Sprintf("releases-backup-%s-%s.json", now.Format("20060102T150405Z"), shared.ShortID())
	path := filepath.Join(dir, name)

	record := Record{
		Repository:      owner + "/" + repo,
		BackupTimestamp: now.Format(time.RFC3339),
		TotalReleases:   len(releases),
		Releases:        releases,
	}
	if kind == KindTest {
		record.Note = "dry-run preview backup; no live releases were modified"
	}

	data, err := shared.MarshalJSON(record, true)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}

	return path, nil
}

// Load reads one backup record back from disk. Any backup produced by Write
// parses back losslessly.
func (m *Manager) Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}

	return &record, nil
}

// LatestFor returns the path of the most recent real-run backup for a
// repository. File names start with a UTC timestamp, so lexicographic order
// is chronological order. Returns shared.ErrNoBackups when none exist.
func (m *Manager) LatestFor(owner, repo string) (string, error) {
	dir := filepath.Join(m.releaseRoot, owner, repo)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s/%s", shared.ErrNoBackups, owner, repo)
		}
		return "", fmt.Errorf("failed to read backup directory: %w", err)
	}

	var latest string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if name > latest {
			latest = name
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w: %s/%s", shared.ErrNoBackups, owner, repo)
	}
	return filepath.Join(dir, latest), nil
}
