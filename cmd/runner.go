package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/backup"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/models"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/repositories"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/services"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	service services.Service
	backups *backup.Manager
	logger  *log.Logger
	output  io.Writer
	stdin   io.Reader
	owner   string
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Service and Owner are normally left empty and resolved lazily from the
// environment; tests inject both to avoid touching real credentials.
type RunnerOpts struct {
	Config  *shared.Config
	Service services.Service
	Backups *backup.Manager
	Logger  *log.Logger
	Output  io.Writer
	Stdin   io.Reader
	Owner   string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Backups == nil {
		opts.Backups = backup.NewManager(opts.Config.Backup.Dir, opts.Config.Backup.TestDir)
	}

	return &Runner{
		config:  opts.Config,
		service: opts.Service,
		backups: opts.Backups,
		logger:  opts.Logger,
		output:  opts.Output,
		stdin:   opts.Stdin,
		owner:   opts.Owner,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		updateCommand, testCommand, restoreCommand, releasesCommand, indexCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// gateway resolves the forge service, building one from the environment
// credentials on first use. Injected services (tests) short-circuit.
func (r *Runner) gateway() (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	creds, err := shared.LoadEnvCredentials(r.config)
	if err != nil {
		return nil, err
	}

	r.owner = creds.Owner
	r.service = services.NewGitHubService(creds.Token, r.config.GitHub.APIURL)
	return r.service, nil
}

// qualifyRepo resolves a whitelist entry or --repo value to an owner/name
// path. Bare names are scoped to the run owner from GITHUB_OWNER (or
// [github].owner); an entry that already carries an owner passes through.
func (r *Runner) qualifyRepo(entry string) (string, error) {
	if strings.Contains(entry, "/") {
		return entry, nil
	}

	owner := r.owner
	if owner == "" {
		owner = strings.TrimSpace(os.Getenv(shared.EnvOwner))
	}
	if owner == "" {
		owner = strings.TrimSpace(r.config.GitHub.Owner)
	}
	if owner == "" {
		return "", fmt.Errorf("%w: %s is not set and %q has no owner prefix", shared.ErrMissingCredentials, shared.EnvOwner, entry)
	}

	r.owner = owner
	return owner + "/" + entry, nil
}

// engine builds a ReleaseEngine wired with the configured pacers.
func (r *Runner) engine(service services.Service) *tasks.ReleaseEngine {
	return tasks.NewReleaseEngine(service, r.backups, tasks.EngineOpts{
		ReleasePacer: tasks.NewPacer(time.Duration(r.config.Pacing.ReleaseIntervalMS) * time.Millisecond),
		RepoPacer:    tasks.NewPacer(time.Duration(r.config.Pacing.RepoIntervalMS) * time.Millisecond),
		PageSize:     r.config.GitHub.PageSize,
	})
}

// recordRun writes one ledger entry after a finished run. Ledger failures
// are logged, never surfaced: the run itself already succeeded or failed on
// its own terms.
func (r *Runner) recordRun(kind string, startedAt time.Time, reposProcessed, reposErrored, releasesProcessed, releasesUpdated int, indexPath string) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("run ledger unavailable", "error", err)
		return
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run ledger unavailable", "error", err)
		return
	}

	owner := r.owner
	if owner == "" {
		owner = r.config.GitHub.Owner
	}
	if owner == "" {
		owner = "unknown"
	}

	run := models.NewRunRecord(0, kind, owner)
	run.SetStartedAt(startedAt)
	run.SetFinishedAt(time.Now())
	run.SetCounters(reposProcessed, reposErrored, releasesProcessed, releasesUpdated)
	run.SetIndexPath(indexPath)

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record run in ledger", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
