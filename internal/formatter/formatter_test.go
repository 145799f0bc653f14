package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
	th "github.com/hung-cybo/update-contributors-after-migration-ghec/internal/testing"
)

func sampleRun() *tasks.UpdateRunResult {
	return &tasks.UpdateRunResult{
		TotalRepos:      2,
		CompletedRepos:  1,
		MissingRepos:    1,
		TotalReleases:   2,
		UpdatedReleases: 1,
		SkippedReleases: 1,
		IndexPath:       "backups/backup-index.json",
		Repos: []tasks.RepoUpdateResult{
			{
				Owner:         "acme",
				Repo:          "widgets",
				Status:        tasks.StatusDone,
				BackupPath:    "backups/acme/widgets/releases-backup-x.json",
				TotalReleases: 2,
				UpdatedCount:  1,
				SkippedCount:  1,
				Releases: []tasks.ReleaseUpdateResult{
					{ID: 1, TagName: "v1.1.0", Changed: true},
					{ID: 2, TagName: "v1.0.0"},
				},
			},
			{
				Owner:  "acme",
				Repo:   "gone",
				Status: tasks.StatusNotFound,
				Err:    errors.New("repository not found: acme/gone"),
			},
		},
	}
}

func TestRunReports(t *testing.T) {
	t.Run("RunToMarkdown", func(t *testing.T) {
		data, err := RunToMarkdown(sampleRun())
		if err != nil {
			t.Fatalf("RunToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Release Mention Migration Report") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "### acme/widgets") {
			t.Errorf("Markdown missing repository section")
		}
		if !strings.Contains(output, "| Releases updated | 1 |") {
			t.Errorf("Markdown missing summary row")
		}
		if !strings.Contains(output, "✓ v1.1.0 updated") {
			t.Errorf("Markdown missing updated release line")
		}
		if !strings.Contains(output, "not_found") {
			t.Errorf("Markdown missing not_found status")
		}
		if !strings.Contains(output, "backup-index.json") {
			t.Errorf("Markdown missing index path")
		}
	})

	t.Run("RunToCSV", func(t *testing.T) {
		data, err := RunToCSV(sampleRun())
		if err != nil {
			t.Fatalf("RunToCSV failed: %v", err)
		}

		output := string(data)
		lines := strings.Split(strings.TrimSpace(output), "\n")

		if lines[0] != "Repository,Tag,ReleaseID,Status,Error" {
			t.Errorf("CSV headers = %q", lines[0])
		}
		// two release rows for widgets plus one repo-level row for gone
		if len(lines) != 4 {
			t.Errorf("CSV row count = %d, want 4:\n%s", len(lines), output)
		}
		if !strings.Contains(output, "acme/widgets,v1.1.0,1,updated,") {
			t.Errorf("CSV missing updated row:\n%s", output)
		}
		if !strings.Contains(output, "acme/widgets,v1.0.0,2,unchanged,") {
			t.Errorf("CSV missing unchanged row:\n%s", output)
		}
		if !strings.Contains(output, "acme/gone,,,not_found,") {
			t.Errorf("CSV missing repo-level row:\n%s", output)
		}
	})

	t.Run("failed release rows carry the error", func(t *testing.T) {
		run := &tasks.UpdateRunResult{
			Repos: []tasks.RepoUpdateResult{{
				Owner: "acme", Repo: "widgets", Status: tasks.StatusDone,
				Releases: []tasks.ReleaseUpdateResult{
					{ID: 3, TagName: "v2.0.0", Err: errors.New("boom")},
				},
			}},
		}

		data, err := RunToCSV(run)
		if err != nil {
			t.Fatalf("RunToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), "acme/widgets,v2.0.0,3,failed,boom") {
			t.Errorf("CSV missing failed row:\n%s", data)
		}
	})
}

func TestPreviewToMarkdown(t *testing.T) {
	t.Run("renders before and after bodies", func(t *testing.T) {
		preview := &tasks.PreviewResult{
			Owner:         "acme",
			Repo:          "widgets",
			TotalReleases: 2,
			ChangedCount:  1,
			BackupPath:    "test-backups/acme/widgets/releases-backup-x.json",
			Releases: []tasks.ReleasePreview{
				{ID: 1, TagName: "v1.1.0", Before: "Thanks @alice", After: "Thanks @alice-acme", Changed: true},
				{ID: 2, TagName: "v1.0.0", Before: "Initial", After: "Initial"},
			},
		}

		data, err := PreviewToMarkdown(preview)
		if err != nil {
			t.Fatalf("PreviewToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Dry Run: acme/widgets") {
			t.Errorf("Markdown missing title:\n%s", output)
		}
		if !strings.Contains(output, "Thanks @alice") || !strings.Contains(output, "Thanks @alice-acme") {
			t.Errorf("Markdown missing before/after bodies:\n%s", output)
		}
		if strings.Contains(output, "## v1.0.0") {
			t.Errorf("unchanged releases should not get a section:\n%s", output)
		}
	})

	t.Run("no changes yields an explicit note", func(t *testing.T) {
		preview := &tasks.PreviewResult{Owner: "acme", Repo: "widgets", TotalReleases: 1}

		data, err := PreviewToMarkdown(preview)
		if err != nil {
			t.Fatalf("PreviewToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "No release bodies would change.") {
			t.Errorf("missing no-change note:\n%s", data)
		}
	})
}

func TestWriteReports(t *testing.T) {
	t.Run("WriteMarkdownReport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.md")

		got, err := WriteMarkdownReport(sampleRun(), path)
		if err != nil {
			t.Fatalf("WriteMarkdownReport failed: %v", err)
		}
		if got != path {
			t.Errorf("path = %q, want %q", got, path)
		}
		th.AssertFileExists(t, path)

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, "# Release Mention Migration Report") {
			t.Errorf("written report missing title")
		}
	})

	t.Run("WriteCSVReport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.csv")

		if _, err := WriteCSVReport(sampleRun(), path); err != nil {
			t.Fatalf("WriteCSVReport failed: %v", err)
		}
		th.AssertFileExists(t, path)
	})
}
