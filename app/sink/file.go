package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/himanshuverma8/news-scraper/app/feed"
	"github.com/xuri/excelize/v2"
)

const (
	outputBaseName = "rss_scraped_data_output"
	sheetName      = "News"
)

// FileSink writes the run's records as a CSV file and an XLSX workbook,
// replacing any previous output.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Name() string {
	return "file"
}

// Policy writes "<Field> Not Found" for blank fields.
func (s *FileSink) Policy() feed.FieldPolicy {
	return feed.SentinelPolicy{}
}

// Deduplicator keeps the most complete record per news URL.
func (s *FileSink) Deduplicator() feed.Deduplicator {
	return feed.NewCompletenessDeduplicator()
}

func (s *FileSink) CSVPath() string {
	return filepath.Join(s.dir, "csv", outputBaseName+".csv")
}

func (s *FileSink) XLSXPath() string {
	return filepath.Join(s.dir, "xlsx", outputBaseName+".xlsx")
}

// Store writes both artifacts. A failure of one does not prevent the other.
func (s *FileSink) Store(ctx context.Context, records []feed.Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Failed: len(records)}, err
	}

	artifacts := []struct {
		path  string
		write func(string, []feed.Record) error
	}{
		{s.CSVPath(), writeCSV},
		{s.XLSXPath(), writeXLSX},
	}

	var errs []error
	for _, artifact := range artifacts {
		path := artifact.path
		if err := artifact.write(path, records); err != nil {
			slog.Error("Failed to write output file", "path", path, "error", err)
			errs = append(errs, &StoreError{Path: path, Err: err})
			continue
		}
		slog.Info("Output file written", "path", path, "records", len(records))
	}

	if len(errs) == len(artifacts) {
		return Result{Failed: len(records)}, errors.Join(errs...)
	}
	return Result{Stored: len(records)}, errors.Join(errs...)
}

func writeCSV(path string, records []feed.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(feed.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.GUID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return f.Close()
}

func writeXLSX(path string, records []feed.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := book.SetSheetRow(sheetName, "A1", &feed.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r.Row()
		if err := book.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.GUID, err)
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
