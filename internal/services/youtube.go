// YouTube Data API v3 implementation of [VideoSearcher]
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splib/internal/shared"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DefaultSearchRate is the number of searches per second allowed when none is configured.
const DefaultSearchRate = 5.0

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // searches per second; <= 0 uses [DefaultSearchRate]
	Endpoint  string  // overrides the API base URL
	Logger    *log.Logger
}

// YouTubeService implements [VideoSearcher] over search.list.
type YouTubeService struct {
	service *youtube.Service
	limiter *rate.Limiter
	timeout time.Duration
	logger  *log.Logger
}

// NewYouTubeService creates a search client authenticated with an API key.
func NewYouTubeService(ctx context.Context, opts YouTubeOpts) (*YouTubeService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: missing YouTube API key", shared.ErrMissingCredentials)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create YouTube client: %v", shared.ErrServiceUnavailable, err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = shared.DefaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultSearchRate
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	return &YouTubeService{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		timeout: opts.Timeout,
		logger:  shared.WithLogger(opts.Logger, "service", "youtube"),
	}, nil
}

func (y *YouTubeService) Name() string {
	return "YouTube"
}

// SearchVideo returns the id of the single top video result for query, or "" when nothing matched.
//
// Results are restricted to videos with strict safe-search, and to HD videos when highDefinition is set.
func (y *YouTubeService) SearchVideo(ctx context.Context, query string, highDefinition bool) (string, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	call := y.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		SafeSearch("strict").
		MaxResults(1)
	if highDefinition {
		call = call.VideoDefinition("high")
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: youtube search: %v", shared.ErrAPIRequest, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Id == nil {
		y.logger.Debug("no results", "query", query, "hd", highDefinition)
		return "", nil
	}

	return resp.Items[0].Id.VideoId, nil
}
