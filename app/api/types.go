package api

import (
	"context"

	"github.com/himanshuverma8/news-scraper/app/database"
	"github.com/himanshuverma8/news-scraper/app/pipeline"
)

const (
	NewsPerPage     = 100
	MaxSearchLimit  = 500
	DefaultLatest   = 10
	MaxLatestLimit  = 100
	timestampLayout = "2006-01-02T15:04:05.000000"
)

type UpdaterInterface interface {
	Update(ctx context.Context) (*pipeline.Report, error)
}

var _ UpdaterInterface = (*pipeline.Updater)(nil)

// CacheHealthReporter describes the state of an optional cache.
type CacheHealthReporter interface {
	Health(ctx context.Context) map[string]any
}

type Handler struct {
	repo    database.RecordRepository
	updater UpdaterInterface
	cache   CacheHealthReporter
	version string
}

type NewsItem struct {
	ID               int64   `json:"id"`
	Title            *string `json:"title"`
	PublicationDate  *string `json:"publication_date"`
	Source           *string `json:"source"`
	NewsURL          *string `json:"news_url"`
	Summary          *string `json:"summary"`
	Country          *string `json:"country"`
	Author           *string `json:"author"`
	Category         *string `json:"category"`
	GUID             string  `json:"guid"`
	ImageURL         *string `json:"image_url"`
	Language         *string `json:"language"`
	ScrapedTimestamp string  `json:"scraped_timestamp"`
}

type Pagination struct {
	CurrentPage          int  `json:"current_page"`
	TotalPages           int  `json:"total_pages"`
	TotalRecords         int  `json:"total_records"`
	RecordsPerPage       int  `json:"records_per_page"`
	RecordsInCurrentPage int  `json:"records_in_current_page"`
	HasNext              bool `json:"has_next"`
	HasPrevious          bool `json:"has_previous"`
	NextPage             *int `json:"next_page"`
	PreviousPage         *int `json:"previous_page"`
}

type Filters struct {
	Category    *string `json:"category"`
	Source      *string `json:"source"`
	Country     *string `json:"country"`
	Language    *string `json:"language"`
	Author      *string `json:"author"`
	SearchTitle *string `json:"search_title"`
}

type NewsPageResponse struct {
	Success    bool       `json:"success"`
	Data       []NewsItem `json:"data"`
	Filters    *Filters   `json:"filters,omitempty"`
	Pagination Pagination `json:"pagination"`
	Timestamp  string     `json:"timestamp"`
}

type LatestResponse struct {
	Success   bool       `json:"success"`
	Data      []NewsItem `json:"data"`
	Count     int        `json:"count"`
	Timestamp string     `json:"timestamp"`
}

type GroupCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type StatsResponse struct {
	Success      bool         `json:"success"`
	TotalRecords int          `json:"total_records"`
	Categories   []GroupCount `json:"categories"`
	Sources      []GroupCount `json:"sources"`
	Timestamp    string       `json:"timestamp"`
}

func toNewsItems(items []database.NewsItem) []NewsItem {
	out := make([]NewsItem, 0, len(items))
	for _, item := range items {
		out = append(out, NewsItem{
			ID:               item.ID,
			Title:            optional(item.Title),
			PublicationDate:  optional(item.PublicationDate),
			Source:           optional(item.Source),
			NewsURL:          optional(item.NewsURL),
			Summary:          optional(item.Summary),
			Country:          optional(item.Country),
			Author:           optional(item.Author),
			Category:         optional(item.Category),
			GUID:             item.GUID,
			ImageURL:         optional(item.ImageURL),
			Language:         optional(item.Language),
			ScrapedTimestamp: item.ScrapedTimestamp,
		})
	}
	return out
}

func toGroupCounts(counts []database.Count) []GroupCount {
	out := make([]GroupCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, GroupCount{Value: c.Value, Count: c.Count})
	}
	return out
}

// optional maps "" to JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newPagination(page, perPage, total, inPage int) Pagination {
	totalPages := (total + perPage - 1) / perPage
	p := Pagination{
		CurrentPage:          page,
		TotalPages:           totalPages,
		TotalRecords:         total,
		RecordsPerPage:       perPage,
		RecordsInCurrentPage: inPage,
		HasNext:              page < totalPages,
		HasPrevious:          page > 1,
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevious {
		previous := page - 1
		p.PreviousPage = &previous
	}
	return p
}
