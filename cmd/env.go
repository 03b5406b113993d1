package main

import (
	"context"
	"time"

	"github.com/sells-group/kpi-pulse/internal/fetcher"
)

// newFetcher builds the HTTP fetcher from config.
func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:      time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// contextWithSourceTimeout bounds a one-shot load so a hung fetch cannot
// stall a command indefinitely. The budget covers all four sheets.
func contextWithSourceTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := time.Duration(cfg.Source.TimeoutSecs) * time.Second * 4
	return context.WithTimeout(ctx, budget)
}
