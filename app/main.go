package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/himanshuverma8/news-scraper/app/api"
	"github.com/himanshuverma8/news-scraper/app/cache"
	"github.com/himanshuverma8/news-scraper/app/cfg"
	"github.com/himanshuverma8/news-scraper/app/database"
	"github.com/himanshuverma8/news-scraper/app/feed"
	"github.com/himanshuverma8/news-scraper/app/pipeline"
	"github.com/himanshuverma8/news-scraper/app/sink"
	"github.com/himanshuverma8/news-scraper/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting news-scraper", "version", appCfg.Version, "command", appCfg.Command, "sink", appCfg.Sink)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch appCfg.Command {
	case cfg.CommandServe:
		err = serve(ctx, appCfg)
	default:
		err = scrape(ctx, appCfg)
	}

	if err != nil {
		slog.Error("Fatal error", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

type components struct {
	pipeline *pipeline.Pipeline
	repo     database.RecordRepository
	cache    *cache.Cache
	closers  []func() error
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			slog.Warn("Failed to release resource", "error", err)
		}
	}
}

func build(ctx context.Context, c *cfg.Cfg) (*components, error) {
	comps := &components{}

	countries := feed.DefaultCountryTable()
	if c.CountriesFile != "" {
		table, err := feed.LoadCountryTable(c.CountriesFile)
		if err != nil {
			return nil, err
		}
		countries = table
		slog.Info("Loaded country table", "file", c.CountriesFile, "rules", len(table.Rules()))
	}

	fetcher := feed.NewFetcher(feed.NewHTTPClient(), feed.FetcherOptions{
		Timeout:       c.FetchTimeout,
		MaxAttempts:   c.FetchAttempts,
		Backoff:       c.FetchBackoff,
		UserAgent:     c.UserAgent,
		RatePerSecond: c.FetchRate,
	})

	if c.RedisAddr != "" {
		bodyCache, err := cache.NewCache(ctx, c.RedisAddr, c.CacheTTL)
		if err != nil {
			slog.Warn("Feed cache disabled", "addr", c.RedisAddr, "error", err)
		} else {
			fetcher.WithCache(bodyCache)
			comps.cache = bodyCache
			comps.closers = append(comps.closers, bodyCache.Close)
		}
	}

	var s sink.Sink
	switch c.Sink {
	case cfg.SinkRemote:
		db, err := database.Open(ctx, c.DBDriver, c.DBDSN)
		if err != nil {
			comps.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		comps.closers = append(comps.closers, db.Close)
		comps.repo = database.NewRecordRepository(db)
		s = sink.NewRemoteSink(comps.repo, c.UpsertWorkers)
		slog.Info("Connected to database", "driver", c.DBDriver)
	default:
		s = sink.NewFileSink(c.OutputDir)
	}

	pool := tasks.NewPool(c.WorkerCount, taskTimeout(c))
	comps.pipeline = pipeline.New(fetcher, countries, s, pool)

	return comps, nil
}

// taskTimeout bounds one source: every attempt plus every backoff delay.
func taskTimeout(c *cfg.Cfg) time.Duration {
	backoff := c.FetchBackoff * time.Duration(1<<uint(c.FetchAttempts-1)-1)
	return time.Duration(c.FetchAttempts)*c.FetchTimeout + backoff + 5*time.Second
}

func scrape(ctx context.Context, c *cfg.Cfg) error {
	sources, err := feed.LoadSources(c.FeedsFile)
	if err != nil {
		return err
	}
	slog.Info("Loaded feed sources", "file", c.FeedsFile, "count", len(sources))

	comps, err := build(ctx, c)
	if err != nil {
		return err
	}
	defer comps.Close()

	runCtx, cancel := context.WithTimeout(ctx, c.RunTimeout)
	defer cancel()

	report, err := comps.pipeline.Run(runCtx, sources)
	if err != nil {
		return err
	}

	slog.Info("Scrape complete",
		"sources", report.Sources,
		"failed_sources", report.FailedSources,
		"stored", report.Store.Stored,
		"duration", report.Duration.String())

	return nil
}

func serve(ctx context.Context, c *cfg.Cfg) error {
	comps, err := build(ctx, c)
	if err != nil {
		return err
	}
	defer comps.Close()

	updater := pipeline.NewUpdater(comps.pipeline, c.FeedsFile, c.RunTimeout)
	handler := api.NewHandler(comps.repo, updater, c.Version)
	if comps.cache != nil {
		handler.WithCache(comps.cache)
	}

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, c.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: c.RunTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
