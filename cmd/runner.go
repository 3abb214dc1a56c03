package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	input  io.Reader

	db     *sql.DB
	store  repositories.Store
	songs  *repositories.SongRepository
	prefs  *repositories.PreferenceRepository
	engine *tasks.CatalogEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Store is set the runner uses it instead of opening the configured database.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
	Store  repositories.Store
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		input:  opts.Input,
		store:  opts.Store,
	}
}

// SetLogger replaces the runner's logger, e.g. to redirect output to a file while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, listCommand, showCommand, tagsCommand,
		addCommand, updateCommand, deleteCommand, audioCommand,
		exportCommand, importCommand, prefsCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// open lazily connects the catalog repositories to the configured store.
func (r *Runner) open() error {
	if r.songs != nil {
		return nil
	}

	if r.store == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		r.db = db
		r.store = repositories.NewKVStore(db)
	}

	locale := language.Und
	if r.config.Catalog.Locale != "" {
		tag, err := language.Parse(r.config.Catalog.Locale)
		if err != nil {
			r.logger.Warn("unknown catalog locale, using default collation", "locale", r.config.Catalog.Locale, "error", err)
		} else {
			locale = tag
		}
	}

	songs := repositories.NewSongRepository(r.store, repositories.SongRepositoryOpts{
		Locale: locale,
		Logger: shared.WithLogger(r.logger, "component", "songs"),
	})
	if err := songs.Initialize(); err != nil {
		return err
	}

	r.songs = songs
	r.prefs = repositories.NewPreferenceRepository(r.store)
	r.engine = tasks.NewCatalogEngine(songs, shared.WithLogger(r.logger, "component", "engine"))
	return nil
}

// Close releases the database connection, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
