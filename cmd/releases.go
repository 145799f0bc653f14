package main

import (
	"context"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/urfave/cli/v3"
)

// Releases lists a repository's releases for inspection before a run.
func (r *Runner) Releases(ctx context.Context, cmd *cli.Command) error {
	repoPath, err := r.qualifyRepo(cmd.String("repo"))
	if err != nil {
		return err
	}

	owner, repo, err := shared.SplitRepoPath(repoPath)
	if err != nil {
		return err
	}

	service, err := r.gateway()
	if err != nil {
		return err
	}

	r.logger.Info("listing releases", "repo", repoPath)

	if _, err := service.VerifyRepository(ctx, owner, repo); err != nil {
		return err
	}

	releases, err := service.ListReleases(ctx, owner, repo, r.config.GitHub.PageSize)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(releases, cmd.Bool("pretty"))
	}

	r.writePlain("Releases for %s (%d):\n\n", repoPath, len(releases))
	for i, release := range releases {
		name := release.Name
		if name == "" {
			name = "(unnamed)"
		}
		r.writePlain("%d. %s - %s\n", i+1, release.TagName, name)
		if release.PublishedAt != "" {
			r.writePlain("   published: %s\n", release.PublishedAt)
		}
	}

	if len(releases) == 0 {
		r.writePlain("No releases found.\n")
	}

	return nil
}
