package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/splib/internal/models"
	"github.com/desertthunder/splib/internal/shared"
)

// CriterionKind selects how a [Criterion] narrows a track list.
type CriterionKind int

const (
	NoCriterion    CriterionKind = iota // keep everything
	TimeCriterion                       // keep tracks added strictly after Since
	TitleCriterion                      // keep tracks after the first one titled Title
)

// Criterion is at most one selection rule applied to fetched tracks.
type Criterion struct {
	Kind  CriterionKind
	Since time.Time
	Title string
}

// NewCriterion builds a criterion from optional CLI inputs.
//
// since and after are mutually exclusive; after is trimmed and empty means unset.
func NewCriterion(since *time.Time, after string) (Criterion, error) {
	after = strings.TrimSpace(after)
	switch {
	case since != nil && after != "":
		return Criterion{}, shared.ErrConflictingFilters
	case since != nil:
		return Criterion{Kind: TimeCriterion, Since: *since}, nil
	case after != "":
		return Criterion{Kind: TitleCriterion, Title: after}, nil
	default:
		return Criterion{Kind: NoCriterion}, nil
	}
}

func (c Criterion) String() string {
	switch c.Kind {
	case TimeCriterion:
		return "added after " + c.Since.Format(time.RFC3339)
	case TitleCriterion:
		return fmt.Sprintf("after %q", c.Title)
	default:
		return "all tracks"
	}
}

// Apply returns the tracks selected by c, preserving order. The input is not modified.
//
// A title criterion matches case-insensitively against the first track with that
// title and keeps only what follows it; [shared.ErrReferenceNotFound] is returned
// when no track has that title.
func (c Criterion) Apply(tracks []models.Track) ([]models.Track, error) {
	switch c.Kind {
	case TimeCriterion:
		kept := make([]models.Track, 0, len(tracks))
		for _, t := range tracks {
			if t.AddedAt.After(c.Since) {
				kept = append(kept, t)
			}
		}
		return kept, nil
	case TitleCriterion:
		for i, t := range tracks {
			if strings.EqualFold(t.Title, c.Title) {
				return append([]models.Track{}, tracks[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %q", shared.ErrReferenceNotFound, c.Title)
	default:
		return append([]models.Track{}, tracks...), nil
	}
}

// ParseSince parses a --since value. Accepts RFC 3339, a local-less
// "2006-01-02T15:04:05" and a bare date; values without a zone are UTC.
func ParseSince(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: --since %q is not an ISO-8601 timestamp", shared.ErrInvalidFlag, value)
}
