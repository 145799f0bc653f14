package main

import (
	"context"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/formatter"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/mentions"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/models"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Update rewrites mentions across every whitelisted repository.
func (r *Runner) Update(ctx context.Context, cmd *cli.Command) error {
	mappingPath := cmd.String("mapping")
	if mappingPath == "" {
		mappingPath = r.config.Files.Mapping
	}
	reposPath := cmd.String("repos")
	if reposPath == "" {
		reposPath = r.config.Files.Repositories
	}

	mapping, repos, err := r.loadInputs(mappingPath, reposPath)
	if err != nil {
		return err
	}

	service, err := r.gateway()
	if err != nil {
		return err
	}

	for i, entry := range repos {
		repos[i], err = r.qualifyRepo(entry)
		if err != nil {
			return err
		}
	}

	r.logger.Info("starting mention migration", "repos", len(repos), "mappings", mapping.Len())
	r.writePlain("Starting release mention migration...\n")
	r.writePlain("Repositories: %d\n", len(repos))
	r.writePlain("Username mappings: %d\n\n", mapping.Len())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.Verify:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.Backup:
				r.writePlain("💾 %s\n", update.Message)
			case tasks.UpdateRelease:
				r.writePlain("   %s\n", update.Message)
			case tasks.BuildIndex:
				r.writePlain("\n📇 %s\n", update.Message)
			}
		}
	}()

	startedAt := time.Now()
	result, err := r.engine(service).Update(ctx, mapping, repos, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Migration Complete!")
	r.writePlain("Repositories: %d processed, %d not found, %d errored\n",
		result.CompletedRepos, result.MissingRepos, result.ErroredRepos)
	r.writePlain("Releases: %d scanned, %d updated, %d unchanged, %d failed\n",
		result.TotalReleases, result.UpdatedReleases, result.SkippedReleases, result.FailedReleases)

	if result.IndexPath != "" {
		r.writePlain("Backup index: %s\n", result.IndexPath)
	}
	if result.IndexErr != nil {
		r.logger.Warn("backup index rebuild failed", "error", result.IndexErr)
	}

	for _, repo := range result.Repos {
		if repo.Err != nil {
			r.writePlain("  ✗ %s: %v\n", repo.FullName(), repo.Err)
		}
	}

	if path := cmd.String("report"); path != "" {
		written, err := formatter.WriteMarkdownReport(result, path)
		if err != nil {
			return err
		}
		r.writePlain("\nMarkdown report: %s\n", written)
	}
	if path := cmd.String("csv"); path != "" {
		written, err := formatter.WriteCSVReport(result, path)
		if err != nil {
			return err
		}
		r.writePlain("CSV report: %s\n", written)
	}

	r.recordRun(models.RunKindUpdate, startedAt,
		result.CompletedRepos, result.MissingRepos+result.ErroredRepos,
		result.TotalReleases, result.UpdatedReleases, result.IndexPath)

	return nil
}

// Index rebuilds the consolidated backup index from a full rescan.
func (r *Runner) Index(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("rebuilding backup index")

	path, err := r.backups.BuildIndex()
	if err != nil {
		return err
	}

	index, err := r.backups.LoadIndex()
	if err != nil {
		return err
	}

	r.writePlain("✓ Backup index rebuilt: %s\n", path)
	r.writePlain("Repositories: %d\n", index.TotalRepositories)
	r.writePlain("Releases: %d\n", index.TotalReleases)
	return nil
}

// loadInputs reads and validates the mapping and whitelist documents.
func (r *Runner) loadInputs(mappingPath, reposPath string) (*mentions.Mapping, []string, error) {
	mapping, err := shared.LoadUsernameMap(mappingPath)
	if err != nil {
		return nil, nil, err
	}

	repos, err := shared.LoadRepositoryList(reposPath)
	if err != nil {
		return nil, nil, err
	}

	return mapping, repos, nil
}
