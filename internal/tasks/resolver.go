package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/services"
	"github.com/desertthunder/splib/internal/shared"
)

const lyricsSuffix = " lyrics"

// SearchAttempt is one step of the fallback search sequence.
type SearchAttempt struct {
	Query          string
	HighDefinition bool
}

// SearchPlan returns the ordered attempts for query: lyrics in HD, lyrics, plain in HD, plain.
func SearchPlan(query string) []SearchAttempt {
	lyrics := query + lyricsSuffix
	return []SearchAttempt{
		{Query: lyrics, HighDefinition: true},
		{Query: lyrics, HighDefinition: false},
		{Query: query, HighDefinition: true},
		{Query: query, HighDefinition: false},
	}
}

// Resolver maps a track's search query to a single video.
type Resolver struct {
	searcher services.VideoSearcher
	logger   *log.Logger
}

// NewResolver creates a [Resolver] backed by searcher.
func NewResolver(searcher services.VideoSearcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Resolver{searcher: searcher, logger: logger}
}

// Resolve walks [SearchPlan] and returns the first attempt with a result.
//
// A nil match with a nil error means every attempt came back empty. A search
// error stops the sequence immediately.
func (r *Resolver) Resolve(ctx context.Context, query string) (*models.VideoMatch, error) {
	for i, attempt := range SearchPlan(query) {
		id, err := r.searcher.SearchVideo(ctx, attempt.Query, attempt.HighDefinition)
		if err != nil {
			return nil, fmt.Errorf("search %q failed: %w", attempt.Query, err)
		}

		if id != "" {
			r.logger.Debug("resolved", "query", attempt.Query, "hd", attempt.HighDefinition, "attempt", i+1, "video", id)
			return &models.VideoMatch{VideoID: id, Query: attempt.Query, HighDefinition: attempt.HighDefinition}, nil
		}

		r.logger.Debug("no results", "query", attempt.Query, "hd", attempt.HighDefinition, "attempt", i+1)
	}

	return nil, nil
}
