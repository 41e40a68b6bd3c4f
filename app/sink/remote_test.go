package sink

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/himanshuverma8/news-scraper/app/database"
	"github.com/himanshuverma8/news-scraper/app/feed"
)

type fakeRepo struct {
	mu       sync.Mutex
	upserted map[string]database.NewsItem
	failGUID string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{upserted: make(map[string]database.NewsItem)}
}

func (r *fakeRepo) UpsertRecord(_ context.Context, item database.NewsItem) error {
	if item.GUID == r.failGUID {
		return errors.New("constraint violation")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted[item.GUID] = item
	return nil
}

func (r *fakeRepo) ListRecords(context.Context, database.Query) ([]database.NewsItem, error) {
	return nil, nil
}

func (r *fakeRepo) CountRecords(context.Context, database.Query) (int, error) {
	return len(r.upserted), nil
}

func (r *fakeRepo) LatestRecords(context.Context, int) ([]database.NewsItem, error) {
	return nil, nil
}

func (r *fakeRepo) CountsBy(context.Context, string) ([]database.Count, error) {
	return nil, nil
}

func (r *fakeRepo) Ping(context.Context) error {
	return nil
}

func TestRemoteSinkStoresAndSkips(t *testing.T) {
	repo := newFakeRepo()
	s := NewRemoteSink(repo, 2)

	records := []feed.Record{
		{GUID: "a", Title: "A", ScrapedTimestamp: "2024-05-01T12:00:00.000000Z"},
		{GUID: "", Title: "no identity"},
		{GUID: "b", Title: "B", ScrapedTimestamp: "2024-05-01T12:00:00.000000Z"},
	}

	result, err := s.Store(context.Background(), records)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Stored != 2 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if repo.upserted["a"].Title != "A" {
		t.Errorf("Expected record a to be upserted, got: %+v", repo.upserted["a"])
	}
}

func TestRemoteSinkContinuesAfterFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failGUID = "bad"
	s := NewRemoteSink(repo, 1)

	records := []feed.Record{{GUID: "bad"}, {GUID: "good-1"}, {GUID: "good-2"}}

	result, err := s.Store(context.Background(), records)
	if err != nil {
		t.Fatalf("Expected per-record failures not to fail the batch, got: %v", err)
	}
	if result.Failed != 1 || result.Stored != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestRemoteSinkCancelledContext(t *testing.T) {
	s := NewRemoteSink(newFakeRepo(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Store(ctx, []feed.Record{{GUID: "a"}, {GUID: "b"}, {}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if result.Stored != 0 || result.Failed != 2 || result.Skipped != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestRemoteSinkIdempotentOnSQLite(t *testing.T) {
	db, err := database.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := database.NewRecordRepository(db)
	s := NewRemoteSink(repo, 4)
	ctx := context.Background()

	normalizer := feed.NewNormalizer(feed.DefaultCountryTable(), feed.AbsentPolicy{})
	records := []feed.Record{
		normalizer.Run(feed.Entry{GUID: "g1", Title: "One", Link: "https://example.com/1"}, feed.Metadata{Title: "Example"}, "https://example.com/rss"),
		normalizer.Run(feed.Entry{Title: "Two", Link: "https://example.com/2"}, feed.Metadata{Title: "Example"}, "https://example.com/rss"),
		normalizer.Run(feed.Entry{Title: "No identity"}, feed.Metadata{Title: "Example"}, "https://example.com/rss"),
	}

	for pass := 0; pass < 2; pass++ {
		result, err := s.Store(ctx, records)
		if err != nil {
			t.Fatalf("Pass %d: store failed: %v", pass, err)
		}
		if result.Stored != 2 || result.Skipped != 1 {
			t.Errorf("Pass %d: unexpected result: %+v", pass, result)
		}
	}

	count, err := repo.CountRecords(ctx, database.Query{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 rows after storing twice, got: %d", count)
	}

	var authorIsNull bool
	if err := db.QueryRow("SELECT author IS NULL FROM news_feed WHERE guid = ?", "g1").Scan(&authorIsNull); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if !authorIsNull {
		t.Error("Expected missing author to be stored as NULL")
	}
}
