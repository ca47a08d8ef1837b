package browser

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

type throttled struct {
	Fetcher
	limiter *rate.Limiter
}

// Throttle spaces page loads at least interval apart. A non-positive
// interval returns f unchanged.
func Throttle(f Fetcher, interval time.Duration) Fetcher {
	if interval <= 0 {
		return f
	}
	return &throttled{
		Fetcher: f,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (t *throttled) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return t.Fetcher.Fetch(ctx, url)
}
