// package tasks implements the library build pipeline.
//
// The core abstraction is LibraryEngine, which fetches a playlist, narrows it with a Criterion,
// and resolves, downloads and encodes each remaining track in order.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/services"
	"github.com/desertthunder/splib/internal/shared"
)

// TrackStatus is the final state of one processed track.
type TrackStatus int

const (
	StatusDownloaded   TrackStatus = iota // file written
	StatusNoMatch                         // every search attempt was empty
	StatusSearchFailed                    // a search request failed
	StatusFetchFailed                     // download or encode failed
)

func (s TrackStatus) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusNoMatch:
		return "no_match"
	case StatusSearchFailed:
		return "search_failed"
	case StatusFetchFailed:
		return "fetch_failed"
	default:
		return ""
	}
}

// TrackOutcome records what happened to a single track.
type TrackOutcome struct {
	Track  models.Track
	Status TrackStatus
	Match  *models.VideoMatch // nil unless a video was resolved
	Path   string             // set when Status is StatusDownloaded
	Err    error              // set for failed statuses
}

// BuildResult contains all data from a library build.
type BuildResult struct {
	PlaylistID   string
	PlaylistName string // empty when the name lookup failed
	SessionDir   string
	Criterion    Criterion
	Fetched      int            // tracks returned by the source
	Total        int            // tracks selected by the criterion
	Outcomes     []TrackOutcome // one per processed track, in order
	Downloaded   int
	Skipped      int // no match
	Failed       int // search or fetch errors
	Interrupted  bool
}

func (r *BuildResult) record(o TrackOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusDownloaded:
		r.Downloaded++
	case StatusNoMatch:
		r.Skipped++
	default:
		r.Failed++
	}
}

// BuildOpts holds the inputs of a single run.
type BuildOpts struct {
	PlaylistID string
	Criterion  Criterion
	SessionDir string // created if missing
}

// LibraryEngine runs builds against a playlist source, a video searcher and a media fetcher.
type LibraryEngine struct {
	source   services.PlaylistSource
	resolver *Resolver
	fetcher  services.MediaFetcher
	logger   *log.Logger
}

// NewLibraryEngine creates a new LibraryEngine with the provided services.
func NewLibraryEngine(source services.PlaylistSource, searcher services.VideoSearcher, fetcher services.MediaFetcher, logger *log.Logger) *LibraryEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	var resolver *Resolver
	if searcher != nil {
		resolver = NewResolver(searcher, logger)
	}

	return &LibraryEngine{
		source:   source,
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Preview fetches and filters a playlist without searching or downloading anything.
func (e *LibraryEngine) Preview(ctx context.Context, playlistID string, criterion Criterion) ([]models.Track, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	tracks, err := e.source.FetchTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return criterion.Apply(tracks)
}

// Resolve runs the fallback search sequence for an arbitrary query.
func (e *LibraryEngine) Resolve(ctx context.Context, query string) (*models.VideoMatch, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: video searcher not initialized", shared.ErrServiceUnavailable)
	}
	return e.resolver.Resolve(ctx, query)
}

// Run fetches the playlist, applies the criterion and processes every selected track in order.
//
// Fetch, filter and directory errors abort the run. Per-track failures are recorded
// in the result and never abort it. If ctx is cancelled between tracks the partial
// result is returned along with the context error.
func (e *LibraryEngine) Run(ctx context.Context, opts BuildOpts, progress chan<- ProgressUpdate) (*BuildResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: video searcher not initialized", shared.ErrServiceUnavailable)
	}
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: media fetcher not initialized", shared.ErrServiceUnavailable)
	}
	if opts.SessionDir == "" {
		return nil, fmt.Errorf("%w: session directory", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, fetchingTracksUpdate(opts.PlaylistID))

	tracks, err := e.source.FetchTracks(ctx, opts.PlaylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", opts.PlaylistID, err)
	}

	name, err := e.source.PlaylistName(ctx, opts.PlaylistID)
	if err != nil {
		e.logger.Warn("could not look up playlist name", "playlist", opts.PlaylistID, "error", err)
	}
	e.sendProgress(progress, fetchedTracksUpdate(name, len(tracks)))

	selected, err := opts.Criterion.Apply(tracks)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, filteredTracksUpdate(opts.Criterion, len(selected), len(tracks)))
	e.logger.Info("selected tracks", "criterion", opts.Criterion.String(), "selected", len(selected), "fetched", len(tracks))

	if err := shared.EnsureDirectory(opts.SessionDir); err != nil {
		return nil, err
	}

	result := &BuildResult{
		PlaylistID:   opts.PlaylistID,
		PlaylistName: name,
		SessionDir:   opts.SessionDir,
		Criterion:    opts.Criterion,
		Fetched:      len(tracks),
		Total:        len(selected),
		Outcomes:     make([]TrackOutcome, 0, len(selected)),
	}

	total := len(selected)
	for i, track := range selected {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			e.logger.Warn("build interrupted", "processed", i, "total", total)
			return result, err
		}

		e.sendProgress(progress, processTrackUpdate(i+1, total, &track))
		outcome := e.processTrack(ctx, track, opts.SessionDir)
		result.record(outcome)
		e.sendProgress(progress, trackOutcomeUpdate(i+1, total, outcome))
	}

	e.sendProgress(progress, doneUpdate(result))
	e.logger.Info("build complete", "downloaded", result.Downloaded, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (e *LibraryEngine) processTrack(ctx context.Context, track models.Track, dir string) TrackOutcome {
	outcome := TrackOutcome{Track: track}
	logger := shared.WithLogger(e.logger, "track", track.Title)

	match, err := e.resolver.Resolve(ctx, track.SearchQuery())
	if err != nil {
		logger.Error("search failed", "error", err)
		outcome.Status = StatusSearchFailed
		outcome.Err = err
		return outcome
	}

	if match == nil {
		logger.Warn("no video found, skipping", "query", track.SearchQuery())
		outcome.Status = StatusNoMatch
		return outcome
	}
	outcome.Match = match

	path, err := e.fetcher.FetchAndEncode(ctx, *match, dir, track.BaseName())
	if err != nil {
		logger.Error("download failed", "url", match.URL(), "error", err)
		outcome.Status = StatusFetchFailed
		outcome.Err = err
		return outcome
	}

	logger.Info("saved", "path", path)
	outcome.Status = StatusDownloaded
	outcome.Path = path
	return outcome
}
