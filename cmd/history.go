package main

import (
	"context"
	"time"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/repositories"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/urfave/cli/v3"
)

// runSummary is the JSON shape for one ledger entry.
type runSummary struct {
	ID                string `json:"id"`
	Sequence          int    `json:"sequence"`
	Kind              string `json:"kind"`
	Owner             string `json:"owner"`
	ReposProcessed    int    `json:"repos_processed"`
	ReposErrored      int    `json:"repos_errored"`
	ReleasesProcessed int    `json:"releases_processed"`
	ReleasesUpdated   int    `json:"releases_updated"`
	IndexPath         string `json:"index_path,omitempty"`
	StartedAt         string `json:"started_at"`
	FinishedAt        string `json:"finished_at"`
}

// History lists past runs recorded in the ledger, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"kind":  cmd.String("kind"),
		"limit": cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summaries := make([]runSummary, len(runs))
		for i, run := range runs {
			summaries[i] = runSummary{
				ID:                run.ID(),
				Sequence:          run.Sequence(),
				Kind:              run.Kind(),
				Owner:             run.Owner(),
				ReposProcessed:    run.ReposProcessed(),
				ReposErrored:      run.ReposErrored(),
				ReleasesProcessed: run.ReleasesProcessed(),
				ReleasesUpdated:   run.ReleasesUpdated(),
				IndexPath:         run.IndexPath(),
				StartedAt:         run.StartedAt().Format(time.RFC3339),
				FinishedAt:        run.FinishedAt().Format(time.RFC3339),
			}
		}
		return r.writeJSON(summaries, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet.\n")
		return nil
	}

	r.writePlain("Run history (%d):\n\n", len(runs))
	for _, run := range runs {
		r.writePlain("#%d %s %s [%s]\n", run.Sequence(), run.Kind(), run.Owner(), run.StartedAt().Format(time.RFC3339))
		r.writePlain("   repos: %d processed, %d errored • releases: %d processed, %d updated\n",
			run.ReposProcessed(), run.ReposErrored(), run.ReleasesProcessed(), run.ReleasesUpdated())
		if run.IndexPath() != "" {
			r.writePlain("   index: %s\n", run.IndexPath())
		}
	}

	return nil
}
