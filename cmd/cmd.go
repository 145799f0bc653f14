// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// updateCommand runs the full mention migration across the whitelist.
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Rewrite mentions in release notes across every whitelisted repository",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mapping",
				Aliases: []string{"m"},
				Usage:   "Path to the old→new username mapping JSON (overrides config)",
			},
			&cli.StringFlag{
				Name:    "repos",
				Aliases: []string{"r"},
				Usage:   "Path to the repository whitelist JSON (overrides config)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a Markdown report to this path after the run",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Write a CSV report to this path after the run",
			},
		},
		Action: r.Update,
	}
}

// testCommand previews the rewrite for a single repository without mutating anything.
func testCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "Dry run against one repository: show what would change, write nothing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "repo",
				Usage:    "Repository to preview (name, or owner/name)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mapping",
				Aliases: []string{"m"},
				Usage:   "Path to the old→new username mapping JSON (overrides config)",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the before/after preview as Markdown to this path",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the preview as JSON",
			},
		},
		Action: r.Test,
	}
}

// restoreCommand puts release bodies back from a backup.
func restoreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore release bodies from a backup (interactive by default)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Restore this repository's latest backup without the TUI (name, or owner/name)",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Restore from a specific backup file instead of the latest",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.Restore,
	}
}

// releasesCommand lists a repository's releases for inspection.
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "releases",
		Usage: "List a repository's releases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "repo",
				Usage:    "Repository to inspect (name, or owner/name)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Releases,
	}
}

// indexCommand rebuilds the consolidated backup index.
func indexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "index",
		Usage:  "Rescan backups on disk and rebuild the consolidated index",
		Action: r.Index,
	}
}

// historyCommand queries the run ledger.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past update and restore runs from the ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Filter by run kind (update or restore)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and the ledger database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the run ledger database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
