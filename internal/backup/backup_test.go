package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/services"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	tu "github.com/hung-cybo/update-contributors-after-migration-ghec/internal/testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	root := t.TempDir()
	return NewManager(filepath.Join(root, "backups"), filepath.Join(root, "test-backups"))
}

func sampleReleases() []services.Release {
	return []services.Release{
		{ID: 1, TagName: "v1.1.0", Name: "v1.1.0", Body: "Thanks @alice", CreatedAt: "2024-01-02T03:04:05Z", PublishedAt: "2024-01-02T04:00:00Z", HTMLURL: "https://github.com/acme/widgets/releases/tag/v1.1.0"},
		{ID: 2, TagName: "v1.0.0", Name: "first", Body: "Initial release", CreatedAt: "2023-12-01T00:00:00Z", PublishedAt: "2023-12-01T01:00:00Z", HTMLURL: "https://github.com/acme/widgets/releases/tag/v1.0.0"},
	}
}

func TestManager_WriteAndLoad(t *testing.T) {
	t.Run("round trips a record", func(t *testing.T) {
		m := newTestManager(t)

		path, err := m.Write("acme", "widgets", sampleReleases(), KindRelease)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		tu.AssertFileExists(t, path)

		record, err := m.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if record.Repository != "acme/widgets" {
			t.Errorf("Repository = %q, want acme/widgets", record.Repository)
		}
		if record.TotalReleases != 2 {
			t.Errorf("TotalReleases = %d, want 2", record.TotalReleases)
		}
		if record.BackupTimestamp == "" {
			t.Error("BackupTimestamp should be set")
		}

		wantTags := []string{"v1.1.0", "v1.0.0"}
		for i, want := range wantTags {
			if record.Releases[i].TagName != want {
				t.Errorf("release %d tag = %q, want %q (input order must be preserved)", i, record.Releases[i].TagName, want)
			}
		}
		if record.Releases[0].Body != "Thanks @alice" {
			t.Errorf("release body not preserved: %q", record.Releases[0].Body)
		}
	})

	t.Run("repeated writes never collide", func(t *testing.T) {
		m := newTestManager(t)

		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			path, err := m.Write("acme", "widgets", sampleReleases(), KindRelease)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if seen[path] {
				t.Fatalf("Write() reused path %s", path)
			}
			seen[path] = true
		}
	})

	t.Run("test kind writes under the test root with a note", func(t *testing.T) {
		m := newTestManager(t)

		path, err := m.Write("acme", "widgets", sampleReleases(), KindTest)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(path, "test-backups") {
			t.Errorf("test backup path %q should live under the test root", path)
		}

		record, err := m.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if record.Note == "" {
			t.Error("test backups should carry a note")
		}
	})

	t.Run("write fails when the root is not writable", func(t *testing.T) {
		root := t.TempDir()
		blocked := filepath.Join(root, "blocked")
		if err := os.WriteFile(blocked, []byte("not a directory"), 0644); err != nil {
			t.Fatal(err)
		}

		m := NewManager(blocked, filepath.Join(root, "test-backups"))
		if _, err := m.Write("acme", "widgets", sampleReleases(), KindRelease); err == nil {
			t.Fatal("expected error when backup root is a file")
		}
	})
}

func TestManager_LatestFor(t *testing.T) {
	t.Run("returns the newest backup", func(t *testing.T) {
		m := newTestManager(t)

		var last string
		for i := 0; i < 3; i++ {
			path, err := m.Write("acme", "widgets", sampleReleases(), KindRelease)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if path > last {
				last = path
			}
		}

		got, err := m.LatestFor("acme", "widgets")
		if err != nil {
			t.Fatalf("LatestFor() error = %v", err)
		}
		if got != last {
			t.Errorf("LatestFor() = %q, want %q", got, last)
		}
	})

	t.Run("no backups wraps ErrNoBackups", func(t *testing.T) {
		m := newTestManager(t)

		_, err := m.LatestFor("acme", "nothing")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), shared.ErrNoBackups.Error()) {
			t.Errorf("error should wrap ErrNoBackups, got %v", err)
		}
	})
}

func TestManager_Index(t *testing.T) {
	seed := func(t *testing.T) *Manager {
		t.Helper()
		m := newTestManager(t)
		if _, err := m.Write("acme", "widgets", sampleReleases(), KindRelease); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Write("acme", "widgets", sampleReleases(), KindRelease); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Write("acme", "gadgets", sampleReleases()[:1], KindRelease); err != nil {
			t.Fatal(err)
		}
		return m
	}

	t.Run("BuildIndex consolidates the scan", func(t *testing.T) {
		m := seed(t)

		path, err := m.BuildIndex()
		if err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}
		tu.AssertFileExists(t, path)

		index, err := m.LoadIndex()
		if err != nil {
			t.Fatalf("LoadIndex() error = %v", err)
		}

		if index.TotalRepositories != 2 {
			t.Errorf("TotalRepositories = %d, want 2", index.TotalRepositories)
		}
		// latest widgets backup has 2 releases, gadgets has 1
		if index.TotalReleases != 3 {
			t.Errorf("TotalReleases = %d, want 3", index.TotalReleases)
		}
		if index.CreatedAt == "" {
			t.Error("CreatedAt should be set")
		}

		if index.Repositories[0].FullName() != "acme/gadgets" {
			t.Errorf("repositories should be sorted, first = %q", index.Repositories[0].FullName())
		}
		for _, repo := range index.Repositories {
			for _, file := range repo.Files {
				if file.Size <= 0 {
					t.Errorf("file %s has size %d", file.File, file.Size)
				}
				tu.AssertFileExists(t, file.Path)
			}
		}
	})

	t.Run("rebuild is idempotent and excludes the index file", func(t *testing.T) {
		m := seed(t)

		if _, err := m.BuildIndex(); err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}
		first, err := m.LoadIndex()
		if err != nil {
			t.Fatal(err)
		}

		if _, err := m.BuildIndex(); err != nil {
			t.Fatalf("second BuildIndex() error = %v", err)
		}
		second, err := m.LoadIndex()
		if err != nil {
			t.Fatal(err)
		}

		firstRepos, _ := json.Marshal(first.Repositories)
		secondRepos, _ := json.Marshal(second.Repositories)
		if string(firstRepos) != string(secondRepos) {
			t.Errorf("rebuild changed logical content:\n%s\n%s", firstRepos, secondRepos)
		}
		if second.TotalReleases != first.TotalReleases {
			t.Errorf("rebuild changed TotalReleases: %d -> %d", first.TotalReleases, second.TotalReleases)
		}

		for _, repo := range second.Repositories {
			for _, file := range repo.Files {
				if file.File == IndexFileName {
					t.Error("index file listed itself")
				}
			}
		}
	})

	t.Run("LoadIndex without an index wraps ErrNoIndex", func(t *testing.T) {
		m := newTestManager(t)

		_, err := m.LoadIndex()
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), shared.ErrNoIndex.Error()) {
			t.Errorf("error should wrap ErrNoIndex, got %v", err)
		}
	})

	t.Run("empty root scans to an empty listing", func(t *testing.T) {
		m := newTestManager(t)

		repos, err := m.Scan()
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(repos) != 0 {
			t.Errorf("expected empty scan, got %d repos", len(repos))
		}
	})
}

func TestManager_Enumerate(t *testing.T) {
	t.Run("prefers the index", func(t *testing.T) {
		m := newTestManager(t)
		if _, err := m.Write("acme", "widgets", sampleReleases(), KindRelease); err != nil {
			t.Fatal(err)
		}
		if _, err := m.BuildIndex(); err != nil {
			t.Fatal(err)
		}

		repos, fromIndex, err := m.Enumerate()
		if err != nil {
			t.Fatalf("Enumerate() error = %v", err)
		}
		if !fromIndex {
			t.Error("Enumerate() should report the index as its source")
		}
		if len(repos) != 1 || repos[0].FullName() != "acme/widgets" {
			t.Errorf("repos = %+v", repos)
		}
	})

	t.Run("falls back to a live scan", func(t *testing.T) {
		m := newTestManager(t)
		if _, err := m.Write("acme", "widgets", sampleReleases(), KindRelease); err != nil {
			t.Fatal(err)
		}

		repos, fromIndex, err := m.Enumerate()
		if err != nil {
			t.Fatalf("Enumerate() error = %v", err)
		}
		if fromIndex {
			t.Error("no index exists, Enumerate() should fall back to scanning")
		}
		if len(repos) != 1 {
			t.Errorf("expected one repo from scan, got %d", len(repos))
		}
	})
}
