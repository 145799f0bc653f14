// package formatter renders migration run results to report formats (CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
)

// RunToMarkdown converts an UpdateRunResult to a Markdown report with a
// summary table followed by a per-repository section.
func RunToMarkdown(result *tasks.UpdateRunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Release Mention Migration Report\n\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339)))

	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Count |\n")
	buf.WriteString("| --- | --- |\n")
	buf.WriteString(fmt.Sprintf("| Repositories | %d |\n", result.TotalRepos))
	buf.WriteString(fmt.Sprintf("| Completed | %d |\n", result.CompletedRepos))
	buf.WriteString(fmt.Sprintf("| Not found | %d |\n", result.MissingRepos))
	buf.WriteString(fmt.Sprintf("| Errored | %d |\n", result.ErroredRepos))
	buf.WriteString(fmt.Sprintf("| Releases scanned | %d |\n", result.TotalReleases))
	buf.WriteString(fmt.Sprintf("| Releases updated | %d |\n", result.UpdatedReleases))
	buf.WriteString(fmt.Sprintf("| Releases unchanged | %d |\n", result.SkippedReleases))
	buf.WriteString(fmt.Sprintf("| Release failures | %d |\n\n", result.FailedReleases))

	if result.IndexPath != "" {
		buf.WriteString(fmt.Sprintf("Backup index: `%s`\n\n", result.IndexPath))
	}
	if result.IndexErr != nil {
		buf.WriteString(fmt.Sprintf("**Warning**: backup index rebuild failed: %v\n\n", result.IndexErr))
	}

	buf.WriteString("## Repositories\n\n")
	for _, repo := range result.Repos {
		buf.WriteString(fmt.Sprintf("### %s\n\n", repo.FullName()))
		buf.WriteString(fmt.Sprintf("**Status**: %s\n", repo.Status))
		if repo.Err != nil {
			buf.WriteString(fmt.Sprintf("**Error**: %v\n", repo.Err))
		}
		if repo.BackupPath != "" {
			buf.WriteString(fmt.Sprintf("**Backup**: `%s`\n", repo.BackupPath))
		}
		buf.WriteString(fmt.Sprintf("**Releases**: %d scanned, %d updated, %d unchanged, %d failed\n\n",
			repo.TotalReleases, repo.UpdatedCount, repo.SkippedCount, repo.FailedCount))

		for _, release := range repo.Releases {
			switch {
			case release.Err != nil:
				buf.WriteString(fmt.Sprintf("- ✗ %s: %v\n", release.TagName, release.Err))
			case release.Changed:
				buf.WriteString(fmt.Sprintf("- ✓ %s updated\n", release.TagName))
			default:
				buf.WriteString(fmt.Sprintf("- %s unchanged\n", release.TagName))
			}
		}
		if len(repo.Releases) > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// RunToCSV converts an UpdateRunResult to CSV with one row per release and
// columns: Repository, Tag, ReleaseID, Status, Error
func RunToCSV(result *tasks.UpdateRunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Repository", "Tag", "ReleaseID", "Status", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, repo := range result.Repos {
		if len(repo.Releases) == 0 {
			errMsg := ""
			if repo.Err != nil {
				errMsg = repo.Err.Error()
			}
			record := []string{repo.FullName(), "", "", repo.Status.String(), errMsg}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}

		for _, release := range repo.Releases {
			status := "unchanged"
			errMsg := ""
			switch {
			case release.Err != nil:
				status = "failed"
				errMsg = release.Err.Error()
			case release.Changed:
				status = "updated"
			}
			record := []string{
				repo.FullName(),
				release.TagName,
				strconv.FormatInt(release.ID, 10),
				status,
				errMsg,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PreviewToMarkdown converts a dry-run PreviewResult to a Markdown report
// with before/after bodies for every release that would change.
func PreviewToMarkdown(result *tasks.PreviewResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Dry Run: %s/%s\n\n", result.Owner, result.Repo))
	buf.WriteString(fmt.Sprintf("**Releases**: %d scanned, %d would change\n\n", result.TotalReleases, result.ChangedCount))

	if result.BackupPath != "" {
		buf.WriteString(fmt.Sprintf("**Backup**: `%s`\n\n", result.BackupPath))
	}
	if result.BackupErr != nil {
		buf.WriteString(fmt.Sprintf("**Warning**: preview backup failed: %v\n\n", result.BackupErr))
	}

	for _, release := range result.Releases {
		if !release.Changed {
			continue
		}
		buf.WriteString(fmt.Sprintf("## %s\n\n", release.TagName))
		buf.WriteString("### Before\n\n```\n")
		buf.WriteString(release.Before)
		buf.WriteString("\n```\n\n### After\n\n```\n")
		buf.WriteString(release.After)
		buf.WriteString("\n```\n\n")
	}

	if result.ChangedCount == 0 {
		buf.WriteString("No release bodies would change.\n")
	}

	return buf.Bytes(), nil
}

// WriteMarkdownReport renders an update run to Markdown and writes it to
// disk. Defaults to migration-report.md.
func WriteMarkdownReport(result *tasks.UpdateRunResult, path string) (string, error) {
	if path == "" {
		path = "migration-report.md"
	}

	data, err := RunToMarkdown(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return path, nil
}

// WriteCSVReport renders an update run to CSV and writes it to disk.
// Defaults to migration-report.csv.
func WriteCSVReport(result *tasks.UpdateRunResult, path string) (string, error) {
	if path == "" {
		path = "migration-report.csv"
	}

	data, err := RunToCSV(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}
