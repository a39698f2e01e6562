// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/shared"
)

// MockSource is a test double for [services.PlaylistSource]
type MockSource struct {
	Tracks   []models.Track
	Title    string
	FetchErr error
	NameErr  error
	Fetches  int
}

func (m *MockSource) FetchTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	m.Fetches++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Tracks, nil
}

func (m *MockSource) PlaylistName(ctx context.Context, playlistID string) (string, error) {
	if m.NameErr != nil {
		return "", m.NameErr
	}
	return m.Title, nil
}

func (m *MockSource) Name() string { return "mock" }

// SearchCall records one [MockSearcher.SearchVideo] invocation.
type SearchCall struct {
	Query          string
	HighDefinition bool
}

// MockSearcher is a test double for [services.VideoSearcher].
//
// Results and Errors are keyed by [SearchKey]; unknown keys return no result.
type MockSearcher struct {
	Results map[string]string
	Errors  map[string]error

	mu    sync.Mutex
	Calls []SearchCall
}

// SearchKey builds the lookup key for a query and quality tier.
func SearchKey(query string, hd bool) string {
	return fmt.Sprintf("%s|hd=%t", query, hd)
}

func (m *MockSearcher) SearchVideo(ctx context.Context, query string, hd bool) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, SearchCall{Query: query, HighDefinition: hd})
	m.mu.Unlock()

	if err := m.Errors[SearchKey(query, hd)]; err != nil {
		return "", err
	}
	return m.Results[SearchKey(query, hd)], nil
}

func (m *MockSearcher) Name() string { return "mock" }

// MockFetcher is a test double for [services.MediaFetcher] that writes a
// small placeholder file instead of downloading.
type MockFetcher struct {
	Err   error
	Fail  map[string]error // keyed by video id
	Calls []models.VideoMatch
}

func (m *MockFetcher) FetchAndEncode(ctx context.Context, match models.VideoMatch, dir, baseName string) (string, error) {
	m.Calls = append(m.Calls, match)
	if m.Err != nil {
		return "", m.Err
	}
	if err := m.Fail[match.VideoID]; err != nil {
		return "", err
	}

	stem := shared.Sanitize(baseName)
	if stem == "" {
		stem = "track"
	}

	path := shared.AllocatePath(dir, stem, ".mp3")
	if err := os.WriteFile(path, []byte(match.VideoID), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustListDir returns the names of the entries in dir.
func MustListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
