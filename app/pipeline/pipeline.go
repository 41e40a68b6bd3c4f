package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/himanshuverma8/news-scraper/app/feed"
	"github.com/himanshuverma8/news-scraper/app/sink"
	"github.com/himanshuverma8/news-scraper/app/tasks"
)

// Report summarizes one ingestion pass.
type Report struct {
	Sources       int
	FailedSources int
	Collected     int
	Deduplicated  int
	Store         sink.Result
	Duration      time.Duration
}

type Pipeline struct {
	fetcher    tasks.FetcherInterface
	parser     *feed.Parser
	normalizer *feed.Normalizer
	dedup      feed.Deduplicator
	sink       sink.Sink
	pool       *tasks.Pool
}

// New wires the pipeline to one sink, taking the field policy and dedup
// strategy the sink declares.
func New(fetcher tasks.FetcherInterface, countries *feed.CountryTable, s sink.Sink, pool *tasks.Pool) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		parser:     feed.NewParser(),
		normalizer: feed.NewNormalizer(countries, s.Policy()),
		dedup:      s.Deduplicator(),
		sink:       s,
		pool:       pool,
	}
}

// Run executes one pass over sources. Per-source failures are logged and
// counted. A store error is returned when nothing was stored or the run was
// cancelled; a sink that stored some records only logs its failures.
func (p *Pipeline) Run(ctx context.Context, sources []string) (*Report, error) {
	started := time.Now()
	report := &Report{Sources: len(sources)}

	jobs := make([]tasks.TaskInterface, 0, len(sources))
	for _, source := range sources {
		jobs = append(jobs, tasks.NewProcessSourceTask(source, p.fetcher, p.parser, p.normalizer))
	}

	slog.Info("Ingestion started", "sources", len(sources), "sink", p.sink.Name())

	// Single aggregator. Records are flattened in source-list order so dedup
	// ties do not depend on which fetch finished first.
	bySource := make([][]feed.Record, len(sources))
	for result := range p.pool.Run(ctx, jobs) {
		if result.Err != nil {
			report.FailedSources++
			continue
		}
		bySource[result.Index] = result.Records
	}

	var records []feed.Record
	for _, batch := range bySource {
		records = append(records, batch...)
	}
	report.Collected = len(records)

	deduplicated := p.dedup.Run(records)
	report.Deduplicated = len(deduplicated)

	slog.Info("Records collected",
		"collected", report.Collected,
		"after_dedup", report.Deduplicated,
		"failed_sources", report.FailedSources)

	result, err := p.sink.Store(ctx, deduplicated)
	report.Store = result
	report.Duration = time.Since(started)

	if err != nil {
		if result.Stored == 0 || ctx.Err() != nil {
			return report, fmt.Errorf("failed to store records in %s sink: %w", p.sink.Name(), err)
		}
		slog.Warn("Sink partially failed", "sink", p.sink.Name(), "stored", result.Stored, "error", err)
	}

	slog.Info("Ingestion finished",
		"stored", result.Stored,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", report.Duration.String())

	return report, nil
}
