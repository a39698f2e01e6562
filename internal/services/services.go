// package services defines the remote collaborators of the library builder
//
// Spotify (playlist catalog), YouTube (video search), yt-dlp (download and encode)
package services

import (
	"context"

	"github.com/desertthunder/splib/internal/models"
)

// PlaylistSource reads playlists from a music catalog.
type PlaylistSource interface {
	// FetchTracks returns every usable entry of the playlist in playlist order,
	// following pagination until exhausted.
	FetchTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// PlaylistName returns the display name of the playlist.
	PlaylistName(ctx context.Context, playlistID string) (string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// VideoSearcher runs a single video search.
type VideoSearcher interface {
	// SearchVideo returns the id of the top result for query, or "" when there
	// are no results. highDefinition restricts results to HD videos.
	SearchVideo(ctx context.Context, query string, highDefinition bool) (string, error)

	Name() string
}

// MediaFetcher downloads a matched video and encodes its audio.
type MediaFetcher interface {
	// FetchAndEncode writes an MP3 for match into dir, naming it after baseName
	// without overwriting existing files, and returns the final path.
	FetchAndEncode(ctx context.Context, match models.VideoMatch, dir, baseName string) (string, error)
}
