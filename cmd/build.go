package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/splib/internal/formatter"
	"github.com/desertthunder/splib/internal/shared"
	"github.com/desertthunder/splib/internal/tasks"
	"github.com/desertthunder/splib/internal/ui"
	"github.com/urfave/cli/v3"
)

var reportFormats = []string{"text", "json", "csv"}

// Build downloads the playlist's selected tracks into a new session directory.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	playlistID := strings.TrimSpace(cmd.StringArg("playlist-id"))
	if playlistID == "" {
		return fmt.Errorf("%w: playlist-id", shared.ErrMissingArgument)
	}

	criterion, err := criterionFromFlags(cmd)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd.String("report"))
	if err != nil {
		return err
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "run", shared.GenerateID()[:8])
	engine, err := r.libraryEngine(ctx, logger)
	if err != nil {
		return err
	}

	root, err := r.config.OutputRoot()
	if err != nil {
		return err
	}
	sessionDir := filepath.Join(root, shared.SessionDirName(r.config.SessionPrefix(), r.now()))

	logger.Info("starting build", "playlist", playlistID, "filter", criterion.String(), "session", sessionDir)

	var progressCh chan tasks.ProgressUpdate
	done := make(chan struct{})
	if format == "text" {
		progressCh = make(chan tasks.ProgressUpdate, 50)
		go r.renderProgress(progressCh, done)
	} else {
		close(done)
	}

	result, runErr := engine.Run(ctx, tasks.BuildOpts{
		PlaylistID: playlistID,
		Criterion:  criterion,
		SessionDir: sessionDir,
	}, progressCh)
	if progressCh != nil {
		close(progressCh)
	}
	<-done

	if result == nil {
		return runErr
	}

	if err := r.writeReport(result, format); err != nil {
		return err
	}

	if cmd.Bool("reveal") && result.Downloaded > 0 {
		if err := r.reveal(result.SessionDir); err != nil {
			logger.Warn("could not open session directory", "path", result.SessionDir, "error", err)
		}
	}

	return runErr
}

func (r *Runner) renderProgress(updates <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	bar := ui.NewProgressBar(0)

	for update := range updates {
		switch update.Phase {
		case tasks.FetchTracks, tasks.FilterTracks:
			r.writePlain("%s\n", update.Message)
		case tasks.ProcessTracks:
			outcome, ok := update.Data.(tasks.TrackOutcome)
			if !ok {
				continue
			}
			r.writePlain("%s %s\n", bar.Render(update.Step, update.Total), r.styleOutcome(outcome, update.Message))
		}
	}
}

func (r *Runner) styleOutcome(outcome tasks.TrackOutcome, msg string) string {
	switch outcome.Status {
	case tasks.StatusDownloaded:
		return r.palette.OK(msg)
	case tasks.StatusNoMatch:
		return r.palette.Warn(msg)
	default:
		return r.palette.Err(msg)
	}
}

func (r *Runner) writeReport(result *tasks.BuildResult, format string) error {
	switch format {
	case "json":
		return r.writeJSON(formatter.NewReport(result), true)
	case "csv":
		data, err := formatter.ReportToCSV(result)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	default:
		data, err := formatter.ReportToText(result)
		if err != nil {
			return err
		}
		r.writePlain("\n")
		r.writePlainHeader("Build Complete")
		return r.writeBytes(data)
	}
}

func criterionFromFlags(cmd *cli.Command) (tasks.Criterion, error) {
	var since *time.Time
	if raw := cmd.String("since"); raw != "" {
		ts, err := tasks.ParseSince(raw)
		if err != nil {
			return tasks.Criterion{}, err
		}
		since = &ts
	}

	return tasks.NewCriterion(since, cmd.String("after"))
}

func outputFormat(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "text", nil
	}
	for _, f := range reportFormats {
		if value == f {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: format %q (want %s)", shared.ErrInvalidFlag, value, strings.Join(reportFormats, ", "))
}
