// Package tasks orchestrates library builds with real-time progress reporting.
//
// # Pipeline
//
// [LibraryEngine.Run] performs one build:
//
//  1. Fetches every track of the playlist from the [services.PlaylistSource]
//  2. Narrows the list with a [Criterion] (added after a time, or after a reference title)
//  3. Creates the session directory
//  4. For each selected track, in order:
//     - resolves a video with the [Resolver] (four searches, first hit wins)
//     - downloads and encodes it with the [services.MediaFetcher]
//
// Fetch, filter and directory errors abort the build. A track that cannot be
// matched, searched or downloaded is logged, recorded as a [TrackOutcome] and skipped.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
