package sink

import (
	"context"
	"log/slog"
	"sync"

	"github.com/himanshuverma8/news-scraper/app/database"
	"github.com/himanshuverma8/news-scraper/app/feed"
	"golang.org/x/sync/semaphore"
)

// RemoteSink upserts every record on its guid. Failures are logged and
// counted per record; the batch always runs to the end unless ctx is done.
type RemoteSink struct {
	repo    database.RecordRepository
	workers int64
}

func NewRemoteSink(repo database.RecordRepository, workers int) *RemoteSink {
	return &RemoteSink{
		repo:    repo,
		workers: int64(max(workers, 1)),
	}
}

func (s *RemoteSink) Name() string {
	return "remote"
}

// Policy leaves blank fields empty so they are stored as NULL.
func (s *RemoteSink) Policy() feed.FieldPolicy {
	return feed.AbsentPolicy{}
}

// Deduplicator defers to the guid upsert.
func (s *RemoteSink) Deduplicator() feed.Deduplicator {
	return feed.NewUpsertDeduplicator()
}

func (s *RemoteSink) Store(ctx context.Context, records []feed.Record) (Result, error) {
	var (
		mu     sync.Mutex
		result Result
	)
	sem := semaphore.NewWeighted(s.workers)

	for i, record := range records {
		guid, ok := record.Identity()
		if !ok {
			slog.Warn("Skipping record without guid", "title", record.Title, "news_url", record.NewsURL)
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			remaining := countIdentified(records[i:])
			mu.Lock()
			result.Failed += remaining
			result.Skipped += len(records) - i - remaining
			mu.Unlock()
			slog.Error("Remote store interrupted", "remaining", remaining, "error", err)
			break
		}

		go func(item database.NewsItem) {
			defer sem.Release(1)

			err := s.repo.UpsertRecord(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Failed to upsert record", "guid", guid, "error", &StoreError{GUID: guid, Err: err})
				result.Failed++
				return
			}
			result.Stored++
		}(toNewsItem(record))
	}

	// Wait for in-flight upserts.
	if err := sem.Acquire(context.Background(), s.workers); err == nil {
		sem.Release(s.workers)
	}

	mu.Lock()
	defer mu.Unlock()
	return result, ctx.Err()
}

func countIdentified(records []feed.Record) int {
	n := 0
	for _, r := range records {
		if _, ok := r.Identity(); ok {
			n++
		}
	}
	return n
}

func toNewsItem(r feed.Record) database.NewsItem {
	return database.NewsItem{
		Title:            r.Title,
		PublicationDate:  r.PublicationDate,
		Source:           r.Source,
		NewsURL:          r.NewsURL,
		Summary:          r.Summary,
		Country:          r.Country,
		Author:           r.Author,
		Category:         r.Category,
		GUID:             r.GUID,
		ImageURL:         r.ImageURL,
		Language:         r.Language,
		ScrapedTimestamp: r.ScrapedTimestamp,
	}
}
