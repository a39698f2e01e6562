// Spotify Web API implementation of [PlaylistSource]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyBaseURL   = "https://api.spotify.com/v1"
	playlistPageSize = 100
	unknownTitle     = "Unknown Title"
)

// SpotifyArtist represents an artist credited on a track.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents the track object of a playlist item.
//
// ID and Name are nullable for local files and unavailable tracks.
type SpotifyTrack struct {
	ID      *string         `json:"id"`
	Name    *string         `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	IsLocal bool            `json:"is_local"`
}

// SpotifyPlaylistItem represents a track within a playlist context.
type SpotifyPlaylistItem struct {
	AddedAt *string       `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistPage represents one page of /playlists/{id}/tracks.
type SpotifyPlaylistPage struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// SpotifyService implements [PlaylistSource] with an app-only client-credentials token.
type SpotifyService struct {
	credentials *clientcredentials.Config
	httpClient  *http.Client
	baseURL     string
	logger      *log.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSpotifyService creates a new Spotify service from "client_id" and "client_secret" credentials.
//
// Every request made by the service, including the token request, is bounded by timeout.
func NewSpotifyService(credentials map[string]string, timeout time.Duration, logger *log.Logger) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	if timeout <= 0 {
		timeout = shared.DefaultTimeout
	}

	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &SpotifyService{
		credentials: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    spotifyBaseURL,
		logger:     shared.WithLogger(logger, "service", "spotify"),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate exchanges the client credentials for an access token.
//
// The token is cached for the lifetime of the service and reused while valid.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	_, err := s.accessToken(ctx)
	return err
}

func (s *SpotifyService) accessToken(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", shared.ErrAuthFailed)
	}

	s.logger.Debug("obtained access token", "expires", token.Expiry)
	s.token = token
	return token, nil
}

// doRequest performs an authenticated GET against an absolute API URL and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, apiURL string, result any) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// FetchTracks returns the playlist's tracks in order, following the next link of every page.
//
// Local files and entries without a track id are dropped.
func (s *SpotifyService) FetchTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d&offset=0", s.baseURL, url.PathEscape(playlistID), playlistPageSize)
	tracks := []models.Track{}
	pages := 0

	for next != "" {
		var page SpotifyPlaylistPage
		if err := s.doRequest(ctx, next, &page); err != nil {
			return nil, err
		}
		pages++

		for _, item := range page.Items {
			if track, ok := s.normalize(item); ok {
				tracks = append(tracks, track)
			}
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
		s.logger.Debug("fetched playlist page", "page", pages, "items", len(page.Items), "more", next != "")
	}

	s.logger.Info("fetched playlist", "playlist", playlistID, "tracks", len(tracks), "pages", pages)
	return tracks, nil
}

// normalize converts a playlist item into a [models.Track]. The second value is false for items that should be skipped.
func (s *SpotifyService) normalize(item SpotifyPlaylistItem) (models.Track, bool) {
	if item.Track == nil || item.Track.IsLocal || item.Track.ID == nil || *item.Track.ID == "" {
		return models.Track{}, false
	}

	title := unknownTitle
	if item.Track.Name != nil && *item.Track.Name != "" {
		title = *item.Track.Name
	}

	artists := make([]string, 0, len(item.Track.Artists))
	for _, a := range item.Track.Artists {
		artists = append(artists, a.Name)
	}

	raw := ""
	if item.AddedAt != nil {
		raw = *item.AddedAt
	}

	addedAt, err := ParseAddedAt(raw)
	if err != nil {
		s.logger.Warn("invalid added_at timestamp, using epoch", "track", title, "added_at", raw, "error", err)
	}

	return models.Track{
		ID:      *item.Track.ID,
		Title:   title,
		Artists: artists,
		AddedAt: addedAt,
	}, true
}

// ParseAddedAt parses an ISO-8601 timestamp as returned by the catalog. Timestamps
// without a zone are taken as UTC.
//
// Empty or malformed input yields the Unix epoch along with a non-nil error.
func ParseAddedAt(raw string) (time.Time, error) {
	epoch := time.Unix(0, 0).UTC()
	if raw == "" {
		return epoch, fmt.Errorf("%w: empty timestamp", shared.ErrInvalidInput)
	}

	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}

	return epoch, fmt.Errorf("%w: timestamp %q", shared.ErrInvalidInput, raw)
}

// PlaylistName looks up the playlist's display name.
func (s *SpotifyService) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return "", err
	}

	client := spotify.New(s.authorizedClient(ctx, token), spotify.WithBaseURL(s.baseURL+"/"))

	playlist, err := client.GetPlaylist(ctx, spotify.ID(playlistID), spotify.Fields("name"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if playlist == nil || playlist.Name == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return playlist.Name, nil
}

func (s *SpotifyService) authorizedClient(ctx context.Context, token *oauth2.Token) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	client.Timeout = s.httpClient.Timeout
	return client
}
