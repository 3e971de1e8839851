package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPFetcher fetches images over HTTP, rate limited so a large import does
// not hammer the image host.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a fetcher allowing perSecond requests with the given
// burst. A non-positive perSecond disables limiting.
func NewHTTPFetcher(timeout time.Duration, perSecond float64, burst int) *HTTPFetcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, max(burst, 1)),
	}
}

// Fetch issues a GET for ref. The caller closes the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
