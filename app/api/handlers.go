package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/himanshuverma8/news-scraper/app/database"
	"github.com/himanshuverma8/news-scraper/app/pipeline"
)

func NewHandler(repo database.RecordRepository, updater UpdaterInterface, version string) *Handler {
	return &Handler{
		repo:    repo,
		updater: updater,
		version: version,
	}
}

// WithCache adds the cache state to the health report.
func (h *Handler) WithCache(cache CacheHealthReporter) *Handler {
	h.cache = cache
	return h
}

type searchParams struct {
	Page        int    `form:"page,default=1" binding:"min=1"`
	Limit       int    `form:"limit,default=100" binding:"min=1,max=500"`
	Category    string `form:"category"`
	Source      string `form:"source"`
	Country     string `form:"country"`
	Language    string `form:"language"`
	Author      string `form:"author"`
	SearchTitle string `form:"search_title"`
}

type latestParams struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Database error", "operation", "ping", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database connection failed"})
		return
	}

	health := map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": now(),
	}
	if total, err := h.repo.CountRecords(ctx, database.Query{}); err == nil {
		health["total_records"] = total
	}

	if h.cache != nil {
		health["cache"] = h.cache.Health(ctx)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetNewsPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Page number must be greater than 0"})
		return
	}

	h.respondPage(c, page, NewsPerPage, database.Query{}, nil)
}

func (h *Handler) SearchNews(c *gin.Context) {
	var params searchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid query parameters", "details": err.Error()})
		return
	}

	query := database.Query{
		Category:      params.Category,
		Source:        params.Source,
		Country:       params.Country,
		Language:      params.Language,
		Author:        params.Author,
		TitleContains: params.SearchTitle,
	}
	filters := &Filters{
		Category:    optional(params.Category),
		Source:      optional(params.Source),
		Country:     optional(params.Country),
		Language:    optional(params.Language),
		Author:      optional(params.Author),
		SearchTitle: optional(params.SearchTitle),
	}

	h.respondPage(c, params.Page, params.Limit, query, filters)
}

func (h *Handler) respondPage(c *gin.Context, page, perPage int, query database.Query, filters *Filters) {
	ctx := c.Request.Context()

	total, err := h.repo.CountRecords(ctx, query)
	if err != nil {
		slog.Error("Database error", "operation", "count_records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching news data"})
		return
	}

	query.Limit = perPage
	query.Offset = (page - 1) * perPage
	items, err := h.repo.ListRecords(ctx, query)
	if err != nil {
		slog.Error("Database error", "operation", "list_records", "page", page, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching news data"})
		return
	}

	c.JSON(http.StatusOK, NewsPageResponse{
		Success:    true,
		Data:       toNewsItems(items),
		Filters:    filters,
		Pagination: newPagination(page, perPage, total, len(items)),
		Timestamp:  now(),
	})
}

func (h *Handler) GetLatestNews(c *gin.Context) {
	var params latestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid query parameters", "details": err.Error()})
		return
	}

	items, err := h.repo.LatestRecords(c.Request.Context(), params.Limit)
	if err != nil {
		slog.Error("Database error", "operation", "latest_records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching latest news"})
		return
	}

	c.JSON(http.StatusOK, LatestResponse{
		Success:   true,
		Data:      toNewsItems(items),
		Count:     len(items),
		Timestamp: now(),
	})
}

// GetLatestRSS serves the newest records as an RSS 2.0 feed.
func (h *Handler) GetLatestRSS(c *gin.Context) {
	var params latestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid query parameters", "details": err.Error()})
		return
	}

	items, err := h.repo.LatestRecords(c.Request.Context(), params.Limit)
	if err != nil {
		slog.Error("Database error", "operation", "latest_rss", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching latest news"})
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	selfLink := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, GenerateRSS(items, selfLink, h.version))
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.repo.CountRecords(ctx, database.Query{})
	if err != nil {
		slog.Error("Database error", "operation", "count_records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching statistics"})
		return
	}

	categories, err := h.repo.CountsBy(ctx, database.ColumnCategory)
	if err != nil {
		slog.Error("Database error", "operation", "counts_by_category", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching statistics"})
		return
	}

	sources, err := h.repo.CountsBy(ctx, database.ColumnSource)
	if err != nil {
		slog.Error("Database error", "operation", "counts_by_source", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error fetching statistics"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Success:      true,
		TotalRecords: total,
		Categories:   toGroupCounts(categories),
		Sources:      toGroupCounts(sources),
		Timestamp:    now(),
	})
}

func (h *Handler) PostUpdate(c *gin.Context) {
	if h.updater == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Updates are not enabled"})
		return
	}

	report, err := h.updater.Update(c.Request.Context())
	if errors.Is(err, pipeline.ErrUpdateInProgress) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Update failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Update completed",
		"report": gin.H{
			"sources":        report.Sources,
			"failed_sources": report.FailedSources,
			"collected":      report.Collected,
			"stored":         report.Store.Stored,
			"failed":         report.Store.Failed,
			"skipped":        report.Store.Skipped,
			"duration":       report.Duration.String(),
		},
		"timestamp": now(),
	})
}
