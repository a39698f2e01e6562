// Package models defines the value types passed between the library builder's stages.
//
//   - [Track] : a playlist entry with title, artists and the time it was added
//   - [Playlist] : playlist metadata with its ordered tracks
//   - [VideoMatch] : the video resolved for a track, with the query and quality tier that found it
//
// Tracks derive their search query ([Track.SearchQuery]) and file name stem ([Track.BaseName]) themselves.
package models
