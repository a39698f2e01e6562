// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/splib/internal/shared"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "Log verbosity (debug, info, warning, error, critical)",
		Value:   "info",
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "since",
			Usage: "Only tracks added after this ISO-8601 timestamp (e.g. 2025-07-02T17:55:19Z)",
		},
		&cli.StringFlag{
			Name:  "after",
			Usage: "Only tracks after the first track with this title (case-insensitive)",
		},
	}
}

// buildCommand downloads a playlist into a new session directory
func buildCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		logLevelFlag(),
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Root directory for session folders (default: ~/Downloads)",
		},
		&cli.StringFlag{
			Name:  "ffmpeg-location",
			Usage: "Path to ffmpeg binary or its directory",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for each network request",
			Value: shared.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Summary format: text, json or csv",
			Value: "text",
		},
		&cli.BoolFlag{
			Name:  "reveal",
			Usage: "Open the session directory when done",
		},
	}

	return &cli.Command{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "Download every (or every new) track of a Spotify playlist as MP3",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist-id",
			},
		},
		Flags:  append(flags, filterFlags()...),
		Action: r.Build,
	}
}

// tracksCommand previews the tracks a build would process
func tracksCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		logLevelFlag(),
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, json or csv",
			Value: "text",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for each network request",
			Value: shared.DefaultTimeout,
		},
	}

	return &cli.Command{
		Name:  "tracks",
		Usage: "List the playlist tracks selected by the filters without downloading",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist-id",
			},
		},
		Flags:  append(flags, filterFlags()...),
		Action: r.Tracks,
	}
}

// searchCommand resolves a free-text query to a video
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run the video search fallback sequence for a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			configFlag(),
			logLevelFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each network request",
				Value: shared.DefaultTimeout,
			},
		},
		Action: r.Search,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.ConfigInit,
			},
		},
	}
}
