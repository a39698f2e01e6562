package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splib/internal/services"
	"github.com/desertthunder/splib/internal/shared"
	"github.com/desertthunder/splib/internal/tasks"
	"github.com/desertthunder/splib/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Services left nil are built from the configuration the first time a command needs them.
type Runner struct {
	config   *shared.Config
	source   services.PlaylistSource
	searcher services.VideoSearcher
	fetcher  services.MediaFetcher
	logger   *log.Logger
	output   io.Writer
	palette  *ui.Palette
	now      func() time.Time
	reveal   func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config // nil loads config.toml, .env and the environment on first use
	Source   services.PlaylistSource
	Searcher services.VideoSearcher
	Fetcher  services.MediaFetcher
	Logger   *log.Logger
	Output   io.Writer
	Now      func() time.Time
	Reveal   func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Reveal == nil {
		opts.Reveal = shared.OpenPath
	}

	return &Runner{
		config:   opts.Config,
		source:   opts.Source,
		searcher: opts.Searcher,
		fetcher:  opts.Fetcher,
		logger:   opts.Logger,
		output:   opts.Output,
		palette:  ui.Styles,
		now:      opts.Now,
		reveal:   opts.Reveal,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		buildCommand, tracksCommand, searchCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// prepare applies the log level, loads configuration and layers command flags on top of it.
func (r *Runner) prepare(cmd *cli.Command) error {
	level, err := shared.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, level)

	if r.config == nil {
		config, err := shared.LoadEnvironment(cmd.String("config"))
		if err != nil {
			return err
		}
		r.config = config
	}

	if cmd.IsSet("output") {
		r.config.Library.OutputDir = cmd.String("output")
	}
	if cmd.IsSet("ffmpeg-location") {
		r.config.Encoder.FFmpegLocation = cmd.String("ffmpeg-location")
	}
	if cmd.IsSet("timeout") {
		timeout := cmd.Duration("timeout")
		if timeout < time.Second {
			return fmt.Errorf("%w: --timeout must be at least 1s, got %v", shared.ErrInvalidFlag, timeout)
		}
		if timeout%time.Second != 0 {
			return fmt.Errorf("%w: --timeout must be whole seconds, got %v", shared.ErrInvalidFlag, timeout)
		}
		r.config.Network.TimeoutSeconds = int(timeout / time.Second)
	}

	return nil
}

func (r *Runner) playlistSource() (services.PlaylistSource, error) {
	if r.source != nil {
		return r.source, nil
	}

	svc, err := services.NewSpotifyService(map[string]string{
		"client_id":     r.config.Credentials.Spotify.ClientID,
		"client_secret": r.config.Credentials.Spotify.ClientSecret,
	}, r.config.Timeout(), r.logger)
	if err != nil {
		return nil, err
	}
	r.source = svc
	return svc, nil
}

func (r *Runner) videoSearcher(ctx context.Context) (services.VideoSearcher, error) {
	if r.searcher != nil {
		return r.searcher, nil
	}

	svc, err := services.NewYouTubeService(ctx, services.YouTubeOpts{
		APIKey:    r.config.Credentials.YouTube.APIKey,
		Timeout:   r.config.Timeout(),
		RateLimit: r.config.Network.SearchRate,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.searcher = svc
	return svc, nil
}

func (r *Runner) mediaFetcher() services.MediaFetcher {
	if r.fetcher == nil {
		r.fetcher = services.NewConverter(services.ConverterOpts{
			FFmpegLocation: r.config.Encoder.FFmpegLocation,
			Executable:     r.config.Encoder.YtDlpPath,
			AudioQuality:   r.config.Encoder.AudioQuality,
			Timeout:        r.config.Timeout(),
			Logger:         r.logger,
		})
	}
	return r.fetcher
}

// libraryEngine builds an engine with every service a full build needs.
func (r *Runner) libraryEngine(ctx context.Context, logger *log.Logger) (*tasks.LibraryEngine, error) {
	if r.source == nil || r.searcher == nil {
		if err := r.config.Validate(); err != nil {
			return nil, err
		}
	}

	source, err := r.playlistSource()
	if err != nil {
		return nil, err
	}
	searcher, err := r.videoSearcher(ctx)
	if err != nil {
		return nil, err
	}

	return tasks.NewLibraryEngine(source, searcher, r.mediaFetcher(), logger), nil
}

// writeJSON writes data as JSON to the output writer
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", r.palette.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
