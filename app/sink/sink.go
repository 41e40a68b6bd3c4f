package sink

import (
	"context"
	"fmt"

	"github.com/himanshuverma8/news-scraper/app/feed"
)

// Sink persists the deduplicated records of one run. Each sink also names how
// blank fields are filled and how duplicates are resolved before Store.
type Sink interface {
	Name() string
	Policy() feed.FieldPolicy
	Deduplicator() feed.Deduplicator
	Store(ctx context.Context, records []feed.Record) (Result, error)
}

var (
	_ Sink = (*FileSink)(nil)
	_ Sink = (*RemoteSink)(nil)
)

type Result struct {
	Stored  int
	Failed  int
	Skipped int
}

// StoreError reports a failure to persist one unit: a record (GUID set) or
// an output artifact (Path set).
type StoreError struct {
	GUID string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to store record %s: %v", e.GUID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
