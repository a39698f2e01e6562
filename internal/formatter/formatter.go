// package formatter renders build reports and track listings (JSON, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/tasks"
)

// Report is the serializable summary of a [tasks.BuildResult].
type Report struct {
	PlaylistID   string        `json:"playlist_id"`
	PlaylistName string        `json:"playlist_name,omitempty"`
	SessionDir   string        `json:"session_dir"`
	Criterion    string        `json:"criterion"`
	Fetched      int           `json:"fetched"`
	Selected     int           `json:"selected"`
	Downloaded   int           `json:"downloaded"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	Interrupted  bool          `json:"interrupted,omitempty"`
	Tracks       []ReportTrack `json:"tracks"`
}

// ReportTrack is one row of a [Report].
type ReportTrack struct {
	Position int       `json:"position"`
	Title    string    `json:"title"`
	Artists  []string  `json:"artists"`
	AddedAt  time.Time `json:"added_at"`
	Status   string    `json:"status"`
	VideoURL string    `json:"video_url,omitempty"`
	Query    string    `json:"query,omitempty"`
	Path     string    `json:"path,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// NewReport flattens a build result for output.
func NewReport(result *tasks.BuildResult) Report {
	report := Report{
		PlaylistID:   result.PlaylistID,
		PlaylistName: result.PlaylistName,
		SessionDir:   result.SessionDir,
		Criterion:    result.Criterion.String(),
		Fetched:      result.Fetched,
		Selected:     result.Total,
		Downloaded:   result.Downloaded,
		Skipped:      result.Skipped,
		Failed:       result.Failed,
		Interrupted:  result.Interrupted,
		Tracks:       make([]ReportTrack, 0, len(result.Outcomes)),
	}

	for i, o := range result.Outcomes {
		row := ReportTrack{
			Position: i + 1,
			Title:    o.Track.Title,
			Artists:  o.Track.Artists,
			AddedAt:  o.Track.AddedAt,
			Status:   o.Status.String(),
			Path:     o.Path,
		}
		if o.Match != nil {
			row.VideoURL = o.Match.URL()
			row.Query = o.Match.Query
		}
		if o.Err != nil {
			row.Error = o.Err.Error()
		}
		report.Tracks = append(report.Tracks, row)
	}

	return report
}

// ReportToCSV converts a build result to CSV format with columns: Position, Title, Artists, Added, Status, Video, Path, Error
func ReportToCSV(result *tasks.BuildResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artists", "Added", "Status", "Video", "Path", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range NewReport(result).Tracks {
		record := []string{
			strconv.Itoa(row.Position),
			row.Title,
			strings.Join(row.Artists, "; "),
			row.AddedAt.UTC().Format(time.RFC3339),
			row.Status,
			row.VideoURL,
			row.Path,
			row.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToText converts a build result to a plain text summary
func ReportToText(result *tasks.BuildResult) ([]byte, error) {
	var buf bytes.Buffer

	name := result.PlaylistName
	if name == "" {
		name = result.PlaylistID
	}

	fmt.Fprintf(&buf, "Playlist: %s\n", name)
	fmt.Fprintf(&buf, "Filter: %s (%d of %d tracks)\n", result.Criterion, result.Total, result.Fetched)
	fmt.Fprintf(&buf, "Saved to: %s\n", result.SessionDir)
	fmt.Fprintf(&buf, "Downloaded: %d  Skipped: %d  Failed: %d\n", result.Downloaded, result.Skipped, result.Failed)
	if result.Interrupted {
		fmt.Fprintf(&buf, "Interrupted after %d of %d tracks\n", len(result.Outcomes), result.Total)
	}

	var problems []tasks.TrackOutcome
	for _, o := range result.Outcomes {
		if o.Status != tasks.StatusDownloaded {
			problems = append(problems, o)
		}
	}

	if len(problems) > 0 {
		buf.WriteString("\nNot downloaded:\n")
		for _, o := range problems {
			line := fmt.Sprintf("  - %s [%s]", o.Track.SearchQuery(), o.Status)
			if o.Err != nil {
				line += ": " + o.Err.Error()
			}
			buf.WriteString(line + "\n")
		}
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts a track listing to CSV format with columns: ID, Title, Artists, Added
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Artists", "Added"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tracks {
		record := []string{t.ID, t.Title, strings.Join(t.Artists, "; "), t.AddedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToText converts a track listing to numbered plain text lines
func TracksToText(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s (added %s)\n", i+1, t.SearchQuery(), t.AddedAt.UTC().Format("2006-01-02"))
	}
	return buf.Bytes(), nil
}
