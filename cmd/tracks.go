package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/splib/internal/formatter"
	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/shared"
	"github.com/desertthunder/splib/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Tracks lists the tracks a build with the same filters would process.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	playlistID := strings.TrimSpace(cmd.StringArg("playlist-id"))
	if playlistID == "" {
		return fmt.Errorf("%w: playlist-id", shared.ErrMissingArgument)
	}

	criterion, err := criterionFromFlags(cmd)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}

	source, err := r.playlistSource()
	if err != nil {
		return err
	}

	tracks, err := tasks.NewLibraryEngine(source, nil, nil, r.logger).Preview(ctx, playlistID, criterion)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		name, err := source.PlaylistName(ctx, playlistID)
		if err != nil {
			r.logger.Warn("could not look up playlist name", "playlist", playlistID, "error", err)
		}
		return r.writeJSON(models.Playlist{ID: playlistID, Name: name, Tracks: tracks}, true)
	case "csv":
		data, err := formatter.TracksToCSV(tracks)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	default:
		r.writePlainHeader(fmt.Sprintf("%d tracks (%s)", len(tracks), criterion))
		data, err := formatter.TracksToText(tracks)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}
}
