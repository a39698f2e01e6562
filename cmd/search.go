package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/splib/internal/shared"
	"github.com/desertthunder/splib/internal/tasks"
	"github.com/urfave/cli/v3"
)

type searchResult struct {
	Query          string `json:"query"`
	Matched        bool   `json:"matched"`
	VideoID        string `json:"video_id,omitempty"`
	URL            string `json:"url,omitempty"`
	Attempt        string `json:"attempt,omitempty"`
	HighDefinition bool   `json:"high_definition,omitempty"`
}

// Search runs the video fallback search for a free-text query and prints the match.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	if err := r.prepare(cmd); err != nil {
		return err
	}

	searcher, err := r.videoSearcher(ctx)
	if err != nil {
		return err
	}

	match, err := tasks.NewLibraryEngine(nil, searcher, nil, r.logger).Resolve(ctx, query)
	if err != nil {
		return err
	}

	result := searchResult{Query: query}
	if match != nil {
		result.Matched = true
		result.VideoID = match.VideoID
		result.URL = match.URL()
		result.Attempt = match.Query
		result.HighDefinition = match.HighDefinition
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if !result.Matched {
		return r.writePlain("%s\n", r.palette.Warn("No video found for "+query))
	}

	quality := "any quality"
	if result.HighDefinition {
		quality = "HD"
	}
	r.writePlain("%s\n", r.palette.OK(result.URL))
	return r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("matched %q (%s)", result.Attempt, quality)))
}
