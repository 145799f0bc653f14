package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/formatter"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Test previews the mention rewrite for a single repository. Nothing on the
// remote is modified; the only write is a backup under the test root.
func (r *Runner) Test(ctx context.Context, cmd *cli.Command) error {
	repoPath := cmd.String("repo")

	mappingPath := cmd.String("mapping")
	if mappingPath == "" {
		mappingPath = r.config.Files.Mapping
	}
	mapping, err := shared.LoadUsernameMap(mappingPath)
	if err != nil {
		return err
	}

	service, err := r.gateway()
	if err != nil {
		return err
	}

	repoPath, err = r.qualifyRepo(repoPath)
	if err != nil {
		return err
	}

	r.logger.Info("starting dry run", "repo", repoPath, "mappings", mapping.Len())
	r.writePlain("Dry run for %s (no releases will be modified)\n\n", repoPath)

	progressCh := make(chan tasks.ProgressUpdate, 10)
	go func() {
		for update := range progressCh {
			r.writePlain("🔍 %s\n", update.Message)
		}
	}()

	result, err := r.engine(service).Preview(ctx, mapping, repoPath, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Dry Run Results")
	r.writePlain("Repository: %s/%s\n", result.Owner, result.Repo)
	r.writePlain("Releases: %d scanned, %d would change\n", result.TotalReleases, result.ChangedCount)

	if result.BackupPath != "" {
		r.writePlain("Preview backup: %s\n", result.BackupPath)
	}
	if result.BackupErr != nil {
		r.logger.Warn("preview backup failed", "error", result.BackupErr)
	}

	for _, release := range result.Releases {
		if !release.Changed {
			continue
		}
		r.writePlainln("── %s ──", release.TagName)
		r.writePlain("Before:\n%s\n\n", release.Before)
		r.writePlain("After:\n%s\n", release.After)
	}

	if result.ChangedCount == 0 {
		r.writePlain("\nNo release bodies would change.\n")
	}

	if path := cmd.String("report"); path != "" {
		data, err := formatter.PreviewToMarkdown(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write preview report: %w", err)
		}
		r.writePlain("\nPreview report: %s\n", path)
	}

	return nil
}
