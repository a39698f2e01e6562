// package models defines the data model for the library builder
package models

import (
	"strings"
	"time"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// Track is one playlist entry normalized from the catalog.
type Track struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Artists []string  `json:"artists"`
	AddedAt time.Time `json:"added_at"`
}

// SearchQuery returns the title followed by every artist name, space separated and trimmed.
func (t Track) SearchQuery() string {
	return strings.TrimSpace(t.Title + " " + strings.Join(t.Artists, " "))
}

// BaseName returns the unsanitized file name stem: "{title}-{first artist}", or the bare title when there are no artists.
func (t Track) BaseName() string {
	if len(t.Artists) > 0 {
		return t.Title + "-" + t.Artists[0]
	}
	return t.Title
}

// Playlist is an ordered list of tracks.
type Playlist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// VideoMatch is the video chosen for a track and the search that found it.
type VideoMatch struct {
	VideoID        string `json:"video_id"`
	Query          string `json:"query"`
	HighDefinition bool   `json:"high_definition"`
}

// URL returns the canonical watch URL.
func (m VideoMatch) URL() string {
	return youtubeWatchURL + m.VideoID
}
