package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/himanshuverma8/news-scraper/app/feed"
	"github.com/himanshuverma8/news-scraper/app/sink"
	"github.com/himanshuverma8/news-scraper/app/tasks"
)

type blockingSink struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Policy() feed.FieldPolicy { return feed.AbsentPolicy{} }

func (s *blockingSink) Deduplicator() feed.Deduplicator { return feed.NewUpsertDeduplicator() }

func (s *blockingSink) Store(_ context.Context, records []feed.Record) (sink.Result, error) {
	close(s.entered)
	<-s.release
	return sink.Result{Stored: len(records)}, nil
}

func writeSources(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rss_feeds.txt")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatalf("Failed to write sources: %v", err)
	}
	return path
}

func TestUpdaterRejectsConcurrentRuns(t *testing.T) {
	server := newFeedServer(t)
	s := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}
	p := New(newTestFetcher(), feed.DefaultCountryTable(), s, tasks.NewPool(1, 0))
	updater := NewUpdater(p, writeSources(t, server.URL+"/bbc/rss.xml\n"), time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := updater.Update(context.Background())
		done <- err
	}()

	<-s.entered
	if !updater.Running() {
		t.Error("Expected updater to report a running pass")
	}
	if _, err := updater.Update(context.Background()); !errors.Is(err, ErrUpdateInProgress) {
		t.Errorf("Expected ErrUpdateInProgress, got: %v", err)
	}

	close(s.release)
	if err := <-done; err != nil {
		t.Errorf("Expected first update to succeed, got: %v", err)
	}
	if updater.Running() {
		t.Error("Expected updater to be idle after the pass")
	}
}

func TestUpdaterMissingSourceList(t *testing.T) {
	p := New(newTestFetcher(), feed.DefaultCountryTable(), sink.NewFileSink(t.TempDir()), tasks.NewPool(1, 0))
	updater := NewUpdater(p, filepath.Join(t.TempDir(), "missing.txt"), 0)

	if _, err := updater.Update(context.Background()); err == nil {
		t.Error("Expected error for missing source list")
	}
	if updater.Running() {
		t.Error("Expected updater to be idle after a failed pass")
	}
}
