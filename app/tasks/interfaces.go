package tasks

import (
	"context"

	"github.com/himanshuverma8/news-scraper/app/feed"
)

// FetcherInterface retrieves the raw body of one feed.
type FetcherInterface interface {
	Fetch(ctx context.Context, feedURL string) (*feed.FetchResult, error)
}

var _ FetcherInterface = (*feed.Fetcher)(nil)
