// Package services implements the three remote collaborators of the library builder.
//
// # Playlist Source
//
// [SpotifyService] implements [PlaylistSource]. It authenticates with an app-only
// client-credentials token ([clientcredentials.Config]) and reads
// /playlists/{id}/tracks 100 items at a time, following each page's next link.
// Local files and entries without a track id are dropped. Entries without a
// title become "Unknown Title"; an unparseable added_at becomes the Unix epoch.
//
// # Video Search
//
// [YouTubeService] implements [VideoSearcher] on the YouTube Data API search.list
// endpoint. Every call asks for one strict safe-search video result and waits on
// a shared [rate.Limiter] first.
//
// # Converter
//
// [Converter] implements [MediaFetcher] by running yt-dlp (bestaudio, extracted
// to MP3 at 192K by default). The output path is reserved with
// [shared.AllocatePath] so existing files are never overwritten.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : required key or secret missing
//   - [shared.ErrAuthFailed] : token endpoint rejected the client or returned no token
//   - [shared.ErrAPIRequest] : transport failure or non-2xx response
//   - [shared.ErrPlaylistNotFound] : playlist has no name or does not exist
//   - [shared.ErrOutputMissing] : yt-dlp exited cleanly but produced no file
package services
