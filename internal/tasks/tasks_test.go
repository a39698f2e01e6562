package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/shared"
	tu "github.com/desertthunder/splib/internal/testing"
)

func twoTrackSource() *tu.MockSource {
	return &tu.MockSource{
		Title: "Road Trip",
		Tracks: []models.Track{
			{ID: "1", Title: "Found Song", Artists: []string{"Band"}, AddedAt: day(1)},
			{ID: "2", Title: "Lost Song", Artists: []string{"Nobody"}, AddedAt: day(2)},
		},
	}
}

func TestLibraryEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Run", func(t *testing.T) {
		t.Run("skips unmatched tracks and keeps going", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "session")
			searcher := &tu.MockSearcher{
				Results: map[string]string{tu.SearchKey("Found Song Band lyrics", true): "vid1"},
			}
			fetcher := &tu.MockFetcher{}
			engine := NewLibraryEngine(twoTrackSource(), searcher, fetcher, nil)

			result, err := engine.Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: dir}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Total != 2 || result.Downloaded != 1 || result.Skipped != 1 || result.Failed != 0 {
				t.Errorf("unexpected counts: %+v", result)
			}

			files := tu.MustListDir(t, dir)
			if len(files) != 1 || files[0] != "Found-Song-Band.mp3" {
				t.Errorf("expected a single Found-Song-Band.mp3, got %v", files)
			}

			if result.Outcomes[1].Status != StatusNoMatch {
				t.Errorf("expected second track to be skipped, got %v", result.Outcomes[1].Status)
			}

			if len(fetcher.Calls) != 1 {
				t.Errorf("expected one download, got %d", len(fetcher.Calls))
			}

			if result.PlaylistName != "Road Trip" {
				t.Errorf("expected playlist name, got %q", result.PlaylistName)
			}
		})

		t.Run("per-track errors are recorded", func(t *testing.T) {
			searchErr := errors.New("search down")
			fetchErr := errors.New("ffmpeg missing")
			searcher := &tu.MockSearcher{
				Results: map[string]string{tu.SearchKey("Found Song Band lyrics", true): "vid1"},
				Errors:  map[string]error{tu.SearchKey("Lost Song Nobody lyrics", true): searchErr},
			}
			fetcher := &tu.MockFetcher{Fail: map[string]error{"vid1": fetchErr}}
			engine := NewLibraryEngine(twoTrackSource(), searcher, fetcher, nil)

			result, err := engine.Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: t.TempDir()}, nil)
			if err != nil {
				t.Fatalf("per-track failures should not fail the run: %v", err)
			}

			if result.Failed != 2 || result.Downloaded != 0 {
				t.Errorf("unexpected counts: %+v", result)
			}
			if got := result.Outcomes[0]; got.Status != StatusFetchFailed || !errors.Is(got.Err, fetchErr) {
				t.Errorf("expected fetch failure, got %+v", got)
			}
			if got := result.Outcomes[1]; got.Status != StatusSearchFailed || !errors.Is(got.Err, searchErr) {
				t.Errorf("expected search failure, got %+v", got)
			}
		})

		t.Run("processes in playlist order", func(t *testing.T) {
			source := &tu.MockSource{Tracks: []models.Track{
				{ID: "1", Title: "One"}, {ID: "2", Title: "Two"}, {ID: "3", Title: "Three"},
			}}
			searcher := &tu.MockSearcher{Results: map[string]string{
				tu.SearchKey("One lyrics", true):   "a",
				tu.SearchKey("Two lyrics", true):   "b",
				tu.SearchKey("Three lyrics", true): "c",
			}}
			fetcher := &tu.MockFetcher{}

			if _, err := NewLibraryEngine(source, searcher, fetcher, nil).Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: t.TempDir()}, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var got []string
			for _, m := range fetcher.Calls {
				got = append(got, m.VideoID)
			}
			if strings.Join(got, ",") != "a,b,c" {
				t.Errorf("expected a,b,c, got %v", got)
			}
		})

		t.Run("applies criterion before searching", func(t *testing.T) {
			searcher := &tu.MockSearcher{}
			engine := NewLibraryEngine(twoTrackSource(), searcher, &tu.MockFetcher{}, nil)

			result, err := engine.Run(ctx, BuildOpts{
				PlaylistID: "pl",
				SessionDir: t.TempDir(),
				Criterion:  Criterion{Kind: TitleCriterion, Title: "found song"},
			}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Fetched != 2 || result.Total != 1 {
				t.Errorf("expected 1 of 2 tracks selected, got %d of %d", result.Total, result.Fetched)
			}
			for _, c := range searcher.Calls {
				if strings.HasPrefix(c.Query, "Found Song") {
					t.Errorf("filtered track should not be searched: %q", c.Query)
				}
			}
		})

		t.Run("fetch failure aborts before creating the session", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "session")
			source := &tu.MockSource{FetchErr: shared.ErrAuthFailed}
			engine := NewLibraryEngine(source, &tu.MockSearcher{}, &tu.MockFetcher{}, nil)

			_, err := engine.Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: dir}, nil)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
				t.Errorf("session directory should not exist")
			}
		})

		t.Run("missing reference track aborts", func(t *testing.T) {
			engine := NewLibraryEngine(twoTrackSource(), &tu.MockSearcher{}, &tu.MockFetcher{}, nil)

			_, err := engine.Run(ctx, BuildOpts{
				PlaylistID: "pl",
				SessionDir: t.TempDir(),
				Criterion:  Criterion{Kind: TitleCriterion, Title: "Zulu"},
			}, nil)
			if !errors.Is(err, shared.ErrReferenceNotFound) {
				t.Errorf("expected ErrReferenceNotFound, got %v", err)
			}
		})

		t.Run("playlist name failure is not fatal", func(t *testing.T) {
			source := twoTrackSource()
			source.NameErr = shared.ErrPlaylistNotFound
			engine := NewLibraryEngine(source, &tu.MockSearcher{}, &tu.MockFetcher{}, nil)

			result, err := engine.Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: t.TempDir()}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.PlaylistName != "" {
				t.Errorf("expected empty name, got %q", result.PlaylistName)
			}
		})

		t.Run("cancelled context returns partial result", func(t *testing.T) {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			engine := NewLibraryEngine(twoTrackSource(), &tu.MockSearcher{}, &tu.MockFetcher{}, nil)

			result, err := engine.Run(cctx, BuildOpts{PlaylistID: "pl", SessionDir: t.TempDir()}, nil)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if result == nil || !result.Interrupted || len(result.Outcomes) != 0 {
				t.Errorf("expected interrupted empty result, got %+v", result)
			}
		})

		t.Run("requires services", func(t *testing.T) {
			engine := NewLibraryEngine(nil, nil, nil, nil)
			_, err := engine.Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: t.TempDir()}, nil)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("emits progress", func(t *testing.T) {
			searcher := &tu.MockSearcher{
				Results: map[string]string{tu.SearchKey("Found Song Band lyrics", true): "vid1"},
			}
			engine := NewLibraryEngine(twoTrackSource(), searcher, &tu.MockFetcher{}, nil)
			progress := make(chan ProgressUpdate, 50)

			if _, err := engine.Run(ctx, BuildOpts{PlaylistID: "pl", SessionDir: t.TempDir()}, progress); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(progress)

			phases := map[Phase]int{}
			var last ProgressUpdate
			for u := range progress {
				phases[u.Phase]++
				last = u
			}

			if phases[FetchTracks] == 0 || phases[FilterTracks] == 0 || phases[ProcessTracks] != 4 {
				t.Errorf("unexpected phase counts %v", phases)
			}
			if last.Phase != Done {
				t.Errorf("expected final update to be done, got %v", last.Phase)
			}
			if _, ok := last.Data.(*BuildResult); !ok {
				t.Errorf("expected build result in final update, got %T", last.Data)
			}
		})
	})

	t.Run("Preview", func(t *testing.T) {
		engine := NewLibraryEngine(twoTrackSource(), nil, nil, nil)
		since := day(1)
		criterion, _ := NewCriterion(&since, "")

		tracks, err := engine.Preview(ctx, "pl", criterion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "2" {
			t.Errorf("expected only track 2, got %v", ids(tracks))
		}
	})

	t.Run("Resolve", func(t *testing.T) {
		t.Run("delegates to resolver", func(t *testing.T) {
			searcher := &tu.MockSearcher{Results: map[string]string{tu.SearchKey("q", false): "v"}}
			match, err := NewLibraryEngine(nil, searcher, nil, nil).Resolve(ctx, "q")
			if err != nil || match == nil || match.VideoID != "v" {
				t.Errorf("expected match v, got %+v, %v", match, err)
			}
		})

		t.Run("without searcher", func(t *testing.T) {
			_, err := NewLibraryEngine(nil, nil, nil, nil).Resolve(ctx, "q")
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})
}

func TestPhaseString(t *testing.T) {
	tc := map[Phase]string{
		FetchTracks:   "fetch_tracks",
		FilterTracks:  "filter_tracks",
		ProcessTracks: "process_tracks",
		Done:          "done",
		Phase(99):     "",
	}
	for p, want := range tc {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
