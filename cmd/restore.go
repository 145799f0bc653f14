package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/models"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/ui"
	"github.com/urfave/cli/v3"
)

// Restore puts release bodies back from a backup. With no flags it launches
// the interactive picker; --repo restores that repository's latest backup
// from the command line.
func (r *Runner) Restore(ctx context.Context, cmd *cli.Command) error {
	repoPath := cmd.String("repo")
	if repoPath == "" {
		return r.restoreInteractive(ctx)
	}
	return r.restoreDirect(ctx, cmd, repoPath)
}

func (r *Runner) restoreInteractive(ctx context.Context) error {
	service, err := r.gateway()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.backups, r.engine(service))
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run restore UI: %w", err)
	}
	return nil
}

func (r *Runner) restoreDirect(ctx context.Context, cmd *cli.Command, repoPath string) error {
	repoPath, err := r.qualifyRepo(repoPath)
	if err != nil {
		return err
	}

	owner, repo, err := shared.SplitRepoPath(repoPath)
	if err != nil {
		return err
	}

	path := cmd.String("file")
	if path == "" {
		path, err = r.backups.LatestFor(owner, repo)
		if err != nil {
			return err
		}
	}

	record, err := r.backups.Load(path)
	if err != nil {
		return err
	}

	r.writePlain("Restoring %s from backup:\n", record.Repository)
	r.writePlain("  File: %s\n", path)
	r.writePlain("  Taken: %s\n", record.BackupTimestamp)
	r.writePlain("  Releases: %d\n\n", record.TotalReleases)

	if !cmd.Bool("yes") {
		confirmed, err := r.confirm("Overwrite the live release bodies with this backup? [y/N]: ")
		if err != nil {
			return err
		}
		if !confirmed {
			r.writePlain("Aborted.\n")
			return nil
		}
	}

	service, err := r.gateway()
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	startedAt := time.Now()
	result, err := r.engine(service).Restore(ctx, record, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Restore Complete!")
	r.writePlain("Restored: %d\n", result.RestoredCount)
	r.writePlain("Skipped (tag gone): %d\n", result.SkippedCount)
	r.writePlain("Failed: %d\n", result.FailedCount)

	for _, release := range result.Releases {
		if release.Err != nil {
			r.writePlain("  ✗ %s: %v\n", release.TagName, release.Err)
		}
	}

	r.owner = owner
	r.recordRun(models.RunKindRestore, startedAt,
		1, 0, len(record.Releases), result.RestoredCount, "")

	return nil
}

// confirm reads one line from stdin and reports whether it is an explicit yes.
func (r *Runner) confirm(prompt string) (bool, error) {
	r.writePlain("%s", prompt)

	scanner := bufio.NewScanner(r.stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read confirmation: %w", err)
		}
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
