package tasks

import (
	"fmt"

	"github.com/desertthunder/splib/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. a [TrackOutcome]
}

// Operation phase enumeration
type Phase int

const (
	FetchTracks Phase = iota
	FilterTracks
	ProcessTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchTracks:
		return "fetch_tracks"
	case FilterTracks:
		return "filter_tracks"
	case ProcessTracks:
		return "process_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingTracksUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s from Spotify...", playlistID),
	}
}

func fetchedTracksUpdate(name string, count int) ProgressUpdate {
	label := name
	if label == "" {
		label = "playlist"
	}
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %s (%d tracks)", label, count),
	}
}

func filteredTracksUpdate(criterion Criterion, kept, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterTracks,
		Step:    kept,
		Total:   fetched,
		Message: fmt.Sprintf("%d of %d tracks selected (%s)", kept, fetched, criterion),
	}
}

func processTrackUpdate(step, total int, tr *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, tr.SearchQuery()),
	}
}

func trackOutcomeUpdate(step, total int, outcome TrackOutcome) ProgressUpdate {
	var msg string
	switch outcome.Status {
	case StatusDownloaded:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, outcome.Track.Title)
	case StatusNoMatch:
		msg = fmt.Sprintf("[%d/%d] - %s: no match", step, total, outcome.Track.Title)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, outcome.Track.Title, outcome.Err)
	}

	return ProgressUpdate{
		Phase:   ProcessTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func doneUpdate(result *BuildResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Saved %d of %d tracks to %s", result.Downloaded, result.Total, result.SessionDir),
		Data:    result,
	}
}
