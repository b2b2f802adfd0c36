package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"github.com/vuciv/true-random-shuffle/internal/auth"
	"github.com/vuciv/true-random-shuffle/internal/catalog"
	"github.com/vuciv/true-random-shuffle/internal/engine"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
	"github.com/vuciv/true-random-shuffle/internal/store"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	db      *sql.DB
	store   store.Store
	auth    *auth.Manager
	client  *spotify.Client
	catalog *catalog.Catalog
	engine  *engine.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, tracksCommand, playerCommand, shuffleCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// connect loads configuration and wires the full dependency graph: database,
// credential store, token manager, API client, catalog cache, and engine.
// Idempotent across command actions.
func (r *Runner) connect(configPath string) error {
	if r.engine != nil {
		return nil
	}

	if r.config == nil {
		if _, err := os.Stat(configPath); err == nil {
			config, err := shared.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", configPath)
			r.config = shared.DefaultConfig()
		}
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.db = db
	}

	r.store = store.NewSQLite(r.db)

	manager, err := auth.NewManager(r.config.Credentials.Spotify, r.store, r.logger)
	if err != nil {
		return err
	}
	r.auth = manager

	shuffleCfg := r.config.Shuffle
	r.client = spotify.NewClient(r.auth, r.logger,
		spotify.WithFetchTuning(shuffleCfg.PageSize, shuffleCfg.WindowSize, shuffleCfg.WindowDelay()))
	r.catalog = catalog.New(r.db, r.client, r.config.Shuffle.CacheTTL(), r.logger)
	r.engine = engine.New(r.catalog, r.client, r.config.Shuffle, r.logger)
	return nil
}

// Close releases the database connection.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SetLogger swaps the logger on the runner and every wired dependency.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
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
