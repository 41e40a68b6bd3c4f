package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanshuverma8/news-scraper/app/feed"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []feed.Record {
	return []feed.Record{
		{
			Title:            "Markets rally",
			PublicationDate:  "Mon, 03 Jul 2023 10:00:00 GMT",
			Source:           "BBC News",
			NewsURL:          "https://www.bbc.co.uk/news/business-1",
			Summary:          "Stocks rose sharply, again.",
			Country:          "UK",
			Author:           "Jane Doe",
			Category:         "Business, Markets",
			GUID:             "bbc-business-1",
			ImageURL:         "https://ichef.bbci.co.uk/1.jpg",
			Language:         "en-gb",
			ScrapedTimestamp: "2024-05-01T12:00:00.000000Z",
		},
		{
			Title:            "Weather warning",
			PublicationDate:  "Publication Date Not Found",
			Source:           "BBC News",
			NewsURL:          "https://www.bbc.co.uk/news/uk-2",
			Summary:          "Heavy rain expected.",
			Country:          "UK",
			Author:           "Author Not Found",
			Category:         "Category Not Found",
			GUID:             "https://www.bbc.co.uk/news/uk-2",
			ImageURL:         "https://ichef.bbci.co.uk/2.jpg",
			Language:         "en-gb",
			ScrapedTimestamp: "2024-05-01T12:00:00.000000Z",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read csv: %v", err)
	}
	return rows
}

func TestFileSinkWritesCSVAndXLSX(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewFileSink(dir)
	records := sampleRecords()

	result, err := s.Store(context.Background(), records)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Stored != 2 || result.Failed != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}

	if s.CSVPath() != filepath.Join(dir, "csv", "rss_scraped_data_output.csv") {
		t.Errorf("Unexpected csv path: %s", s.CSVPath())
	}

	rows := readCSV(t, s.CSVPath())
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got: %d", len(rows))
	}
	for i, column := range feed.Columns {
		if rows[0][i] != column {
			t.Errorf("Header %d: expected %s, got: %s", i, column, rows[0][i])
		}
	}
	if rows[1][4] != "Stocks rose sharply, again." {
		t.Errorf("Expected summary with comma to round-trip, got: %s", rows[1][4])
	}
	if rows[2][6] != "Author Not Found" {
		t.Errorf("Expected author sentinel, got: %s", rows[2][6])
	}

	book, err := excelize.OpenFile(s.XLSXPath())
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer book.Close()

	sheetRows, err := book.GetRows("News")
	if err != nil {
		t.Fatalf("Failed to read sheet: %v", err)
	}
	if len(sheetRows) != 3 {
		t.Fatalf("Expected header and 2 rows in sheet, got: %d", len(sheetRows))
	}
	if sheetRows[0][0] != "Title" || sheetRows[1][8] != "bbc-business-1" {
		t.Errorf("Unexpected sheet contents: %v", sheetRows[:2])
	}
}

func TestFileSinkOverwritesPreviousOutput(t *testing.T) {
	s := NewFileSink(t.TempDir())
	ctx := context.Background()

	if _, err := s.Store(ctx, sampleRecords()); err != nil {
		t.Fatalf("First store failed: %v", err)
	}
	if _, err := s.Store(ctx, sampleRecords()[:1]); err != nil {
		t.Fatalf("Second store failed: %v", err)
	}

	if rows := readCSV(t, s.CSVPath()); len(rows) != 2 {
		t.Errorf("Expected header and 1 row after overwrite, got: %d", len(rows))
	}
}

func TestFileSinkEmptyRun(t *testing.T) {
	s := NewFileSink(t.TempDir())

	result, err := s.Store(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Stored != 0 {
		t.Errorf("Expected nothing stored, got: %d", result.Stored)
	}
	if rows := readCSV(t, s.CSVPath()); len(rows) != 1 {
		t.Errorf("Expected header only, got: %d rows", len(rows))
	}
}

func TestFileSinkReportsArtifactFailure(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the csv directory should be.
	if err := os.WriteFile(filepath.Join(dir, "csv"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker: %v", err)
	}

	s := NewFileSink(dir)
	result, err := s.Store(context.Background(), sampleRecords())
	if err == nil {
		t.Fatal("Expected error when csv directory cannot be created")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected *StoreError, got: %T", err)
	}
	if storeErr.Path != s.CSVPath() {
		t.Errorf("Expected failing path %s, got: %s", s.CSVPath(), storeErr.Path)
	}

	// The workbook is still written.
	if _, statErr := os.Stat(s.XLSXPath()); statErr != nil {
		t.Errorf("Expected xlsx to be written, got: %v", statErr)
	}
	if result.Stored != 2 {
		t.Errorf("Expected records stored in the remaining artifact, got: %+v", result)
	}
}

func TestSinksDeclareFieldPolicyAndDeduplicator(t *testing.T) {
	fileSink := NewFileSink(t.TempDir())
	if _, ok := fileSink.Policy().(feed.SentinelPolicy); !ok {
		t.Errorf("Expected sentinel policy for file sink, got: %T", fileSink.Policy())
	}
	if _, ok := fileSink.Deduplicator().(*feed.CompletenessDeduplicator); !ok {
		t.Errorf("Expected completeness dedup for file sink, got: %T", fileSink.Deduplicator())
	}

	remoteSink := NewRemoteSink(newFakeRepo(), 1)
	if _, ok := remoteSink.Policy().(feed.AbsentPolicy); !ok {
		t.Errorf("Expected absent policy for remote sink, got: %T", remoteSink.Policy())
	}
	if _, ok := remoteSink.Deduplicator().(*feed.UpsertDeduplicator); !ok {
		t.Errorf("Expected upsert dedup for remote sink, got: %T", remoteSink.Deduplicator())
	}
}
