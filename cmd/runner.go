package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ymx/internal/audio"
	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/playback"
	"github.com/desertthunder/ymx/internal/repositories"
	"github.com/desertthunder/ymx/internal/services"
	"github.com/desertthunder/ymx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	client      *services.Client
	resolver    *services.Resolver
	sinkFactory audio.SinkFactory
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	HTTPClient  *http.Client // replaces the token-authorized client when set
	SinkFactory audio.SinkFactory
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
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
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		sinkFactory: opts.SinkFactory,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		playCommand, likedCommand, playlistsCommand, playlistCommand, resolveCommand, accountCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure loads the config file named by --config when it exists and applies the global flag overrides.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
			}
			r.config = config
			r.configPath = path
		}
	}

	if token := cmd.String("token"); token != "" {
		r.config.Credentials.Token = token
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// SetLogger replaces the logger used by the runner and by clients created afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// services lazily builds the metadata client and resolver around one shared HTTP client.
func (r *Runner) services(ctx context.Context) (*services.Client, *services.Resolver, error) {
	if r.client != nil {
		return r.client, r.resolver, nil
	}

	httpClient := r.httpClient
	if httpClient == nil {
		var err error
		api := r.config.API
		if httpClient, err = services.NewHTTPClient(ctx, r.config.Credentials.Token, api.Timeout(), api.UserAgent); err != nil {
			return nil, nil, fmt.Errorf("%w (set credentials.token, --token or YMX_TOKEN)", err)
		}
	}

	r.client = services.NewClient(services.ClientOpts{
		BaseURL:        r.config.API.BaseURL,
		HTTPClient:     httpClient,
		Logger:         r.logger,
		RateLimit:      r.config.API.RateLimit,
		DetailAttempts: r.config.API.DetailAttempts,
	})
	r.resolver = services.NewResolver(r.client)
	return r.client, r.resolver, nil
}

// openDatabase opens the configured database and brings its schema up to date.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// openHistory returns a play recorder when history is enabled. A database
// failure disables history for the session instead of stopping playback.
func (r *Runner) openHistory() (playback.Recorder, func()) {
	if !r.config.History.Enabled {
		return nil, func() {}
	}

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("play history disabled", "error", err)
		return nil, func() {}
	}

	recorder := repositories.NewHistoryRecorder(repositories.NewPlayRepository(db))
	return recorder, func() { db.Close() }
}

// logMissingDurations reports tracks the service returned without a duration.
func (r *Runner) logMissingDurations(tracks []models.Track) {
	for _, t := range tracks {
		if t.DurationMS == nil {
			r.logger.Debug("track has no duration", "track", t.ID, "title", t.String())
		}
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
