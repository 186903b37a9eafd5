package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/guitartube/internal/chords"
	"github.com/desertthunder/guitartube/internal/repositories"
	"github.com/desertthunder/guitartube/internal/services"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      services.Store
	source     services.TabSource
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store, Source and DB are built from the config on first use when nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      services.Store
	Source     services.TabSource
	DB         *sql.DB
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		source:     opts.Source,
		db:         opts.DB,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database handle if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, chordsCommand, variantsCommand, renderCommand, ingestCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database opens the configured database and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db
	return db, nil
}

func (r *Runner) objectStore() (services.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	store, err := services.NewStore(r.config.Storage, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.store = store
	return store, nil
}

func (r *Runner) tabSource(ref string) services.TabSource {
	if r.source != nil {
		return r.source
	}
	if services.IsRemote(ref) {
		return services.NewHTTPTabSource(r.config.Sources, r.httpClient)
	}
	return services.FileTabSource{}
}

// resolver returns the built-in chord table extended with cached shapes. The cache is
// only consulted when the database already exists.
func (r *Runner) resolver() *chords.Resolver {
	if r.db == nil {
		if _, err := os.Stat(r.config.Database.Path); err != nil {
			return chords.NewResolver()
		}
	}

	db, err := r.database()
	if err != nil {
		r.logger.Warn("shape cache unavailable, using built-in table", "error", err)
		return chords.NewResolver()
	}
	shapes, err := repositories.NewShapeRepository(db).Shapes()
	if err != nil {
		r.logger.Warn("failed to load cached shapes", "error", err)
		return chords.NewResolver()
	}
	if len(shapes) > 0 {
		r.logger.Debug("loaded cached shapes", "count", len(shapes))
	}
	return chords.NewResolver(chords.WithShapes(shapes...))
}

// drawEngine returns an engine that can only draw.
func (r *Runner) drawEngine() *tasks.RenderEngine {
	return tasks.NewRenderEngine(r.resolver(), nil, nil)
}

// renderEngine returns an engine wired to the object store and the diagram records.
func (r *Runner) renderEngine() (*tasks.RenderEngine, error) {
	store, err := r.objectStore()
	if err != nil {
		return nil, err
	}
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return tasks.NewRenderEngine(r.resolver(), store, repositories.NewDiagramRepository(db)), nil
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
