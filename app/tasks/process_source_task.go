package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/himanshuverma8/news-scraper/app/feed"
)

// ProcessSourceTask fetches, parses and normalizes a single feed source.
type ProcessSourceTask struct {
	Task
	fetcher    FetcherInterface
	parser     *feed.Parser
	normalizer *feed.Normalizer
}

func NewProcessSourceTask(source string, fetcher FetcherInterface, parser *feed.Parser, normalizer *feed.Normalizer) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:       NewTask(TaskTypeProcessSource, source),
		fetcher:    fetcher,
		parser:     parser,
		normalizer: normalizer,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) ([]feed.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fetched, err := t.fetcher.Fetch(ctx, t.Source)
	if err != nil {
		return nil, err
	}

	metadata, entries, err := t.parser.Run(fetched.Body)
	if err != nil {
		var parseErr *feed.ParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = t.Source
		}
		return nil, err
	}

	records := make([]feed.Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, t.normalizer.Run(entry, *metadata, t.Source))
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"feed", t.Source,
		"duration", t.GetDuration(),
		"attempts", fetched.Attempts,
		"cached", fetched.FromCache,
		"entries", len(records))

	return records, nil
}
