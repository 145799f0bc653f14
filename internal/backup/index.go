package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/tidwall/gjson"
)

// IndexFileName is the consolidated index written at the release root.
const IndexFileName = "backup-index.json"

// FileInfo describes one backup file found on disk.
type FileInfo struct {
	File string `json:"file"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// RepoBackups lists every backup file found for one repository, oldest
// first (file names sort chronologically).
type RepoBackups struct {
	Owner string     `json:"owner"`
	Repo  string     `json:"repo"`
	Files []FileInfo `json:"backup_files"`
}

// FullName returns the owner/repo path for display.
func (r RepoBackups) FullName() string {
	return r.Owner + "/" + r.Repo
}

// Latest returns the newest backup file for the repository.
func (r RepoBackups) Latest() (FileInfo, bool) {
	if len(r.Files) == 0 {
		return FileInfo{}, false
	}
	return r.Files[len(r.Files)-1], true
}

// Index is the consolidated manifest of every backup on durable storage.
// It is rebuilt by full rescan, never appended to.
type Index struct {
	CreatedAt         string        `json:"created_at"`
	TotalRepositories int           `json:"total_repositories"`
	TotalReleases     int           `json:"total_releases"`
	Repositories      []RepoBackups `json:"repositories"`
}

// Scan walks the release backup root and enumerates every (owner, repo)
// pair and the backup files beneath it. The index file itself is excluded.
// A missing root yields an empty listing, not an error.
func (m *Manager) Scan() ([]RepoBackups, error) {
	owners, err := os.ReadDir(m.releaseRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup root: %w", err)
	}

	var repos []RepoBackups
	for _, ownerEntry := range owners {
		if !ownerEntry.IsDir() {
			continue
		}
		owner := ownerEntry.Name()

		repoEntries, err := os.ReadDir(filepath.Join(m.releaseRoot, owner))
		if err != nil {
			return nil, fmt.Errorf("failed to read backups for %s: %w", owner, err)
		}

		for _, repoEntry := range repoEntries {
			if !repoEntry.IsDir() {
				continue
			}
			repo := repoEntry.Name()

			dir := filepath.Join(m.releaseRoot, owner, repo)
			fileEntries, err := os.ReadDir(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to read backups for %s/%s: %w", owner, repo, err)
			}

			var files []FileInfo
			for _, fileEntry := range fileEntries {
				name := fileEntry.Name()
				if fileEntry.IsDir() || filepath.Ext(name) != ".json" || name == IndexFileName {
					continue
				}
				info, err := fileEntry.Info()
				if err != nil {
					return nil, fmt.Errorf("failed to stat backup file %s: %w", name, err)
				}
				files = append(files, FileInfo{
					File: name,
					Path: filepath.Join(dir, name),
					Size: info.Size(),
				})
			}

			if len(files) == 0 {
				continue
			}
			sort.Slice(files, func(i, j int) bool { return files[i].File < files[j].File })
			repos = append(repos, RepoBackups{Owner: owner, Repo: repo, Files: files})
		}
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].FullName() < repos[j].FullName() })
	return repos, nil
}

// BuildIndex rescans the release root and writes the consolidated index
// document, returning its path. Total release counts are probed from each
// repository's most recent backup file. Rebuilding is idempotent with
// respect to the filesystem state at scan time.
func (m *Manager) BuildIndex() (string, error) {
	repos, err := m.Scan()
	if err != nil {
		return "", err
	}

	index := Index{
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Repositories: repos,
	}
	index.TotalRepositories = len(repos)

	for _, repo := range repos {
		latest, ok := repo.Latest()
		if !ok {
			continue
		}
		data, err := os.ReadFile(latest.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read backup file %s: %w", latest.Path, err)
		}
		index.TotalReleases += int(gjson.GetBytes(data, "total_releases").Int())
	}

	if err := os.MkdirAll(m.releaseRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup root: %w", err)
	}

	path := filepath.Join(m.releaseRoot, IndexFileName)
	data, err := shared.MarshalJSON(index, true)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup index: %w", err)
	}

	return path, nil
}

// LoadIndex reads the consolidated index if one has been built. Returns
// shared.ErrNoIndex when absent.
func (m *Manager) LoadIndex() (*Index, error) {
	path := filepath.Join(m.releaseRoot, IndexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrNoIndex, path)
		}
		return nil, fmt.Errorf("failed to read backup index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse backup index: %w", err)
	}

	return &index, nil
}

// Enumerate lists available backups for selection, preferring the
// consolidated index and falling back to a live scan when no index exists.
// The boolean reports whether the index served the listing.
func (m *Manager) Enumerate() ([]RepoBackups, bool, error) {
	index, err := m.LoadIndex()
	if err == nil {
		return index.Repositories, true, nil
	}

	repos, err := m.Scan()
	if err != nil {
		return nil, false, err
	}
	return repos, false, nil
}
