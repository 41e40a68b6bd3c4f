package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Run configuration
	Command       string `long:"command" env:"COMMAND" default:"scrape" choice:"scrape" choice:"serve" description:"What to run: a single ingestion pass or the read API"`
	FeedsFile     string `long:"feeds-file" env:"FEEDS_FILE" default:"utils/rss_feeds.txt" description:"Plain-text list of feed URLs, one per line"`
	CountriesFile string `long:"countries-file" env:"COUNTRIES_FILE" description:"Optional YAML file replacing the built-in URL to country table"`
	Sink          string `long:"sink" env:"SINK" default:"file" choice:"file" choice:"remote" description:"Where scraped records are persisted"`
	OutputDir     string `long:"output-dir" env:"OUTPUT_DIR" default:"rss_scraped_data" description:"Directory for CSV and XLSX output (file sink)"`

	// Database configuration
	DBDriver string `long:"db-driver" env:"DB_DRIVER" default:"sqlite" choice:"sqlite" choice:"postgres" description:"Database driver for the remote sink"`
	DBDSN    string `long:"db-dsn" env:"DB_DSN" default:"news_feed.db" description:"Database DSN (file path for sqlite, connection URL for postgres)"`

	// Pipeline configuration
	WorkerCount   int     `long:"worker-count" env:"WORKER_COUNT" default:"8" description:"Number of feeds fetched concurrently"`
	UpsertWorkers int     `long:"upsert-workers" env:"UPSERT_WORKERS" default:"4" description:"Number of concurrent upserts in the remote sink"`
	FetchTimeout  int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-attempt fetch timeout in seconds"`
	FetchAttempts int     `long:"fetch-attempts" env:"FETCH_ATTEMPTS" default:"3" description:"Maximum fetch attempts per feed"`
	FetchBackoff  int     `long:"fetch-backoff" env:"FETCH_BACKOFF" default:"1000" description:"Backoff factor between fetch attempts in milliseconds"`
	FetchRate     float64 `long:"fetch-rate" env:"FETCH_RATE" default:"0" description:"Maximum outbound requests per second across all workers (0 = unlimited)"`
	RunTimeout    int     `long:"run-timeout" env:"RUN_TIMEOUT" default:"600" description:"Deadline for a whole ingestion pass in seconds"`

	// Cache configuration
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the feed body cache (optional)"`
	CacheTTL  int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Feed body cache TTL in seconds"`

	// HTTP configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve command)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key protecting POST /update (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses args (os.Args[1:] when nil) together with the environment.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := fromRaw(raw)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) Validate() error {
	if c.Command == CommandScrape && c.FeedsFile == "" {
		return fmt.Errorf("feeds file is required")
	}
	if c.Command == CommandServe && c.Sink != SinkRemote {
		return fmt.Errorf("serve requires the remote sink (--sink=remote)")
	}
	if c.Sink == SinkRemote && c.DBDSN == "" {
		return fmt.Errorf("database DSN is required for the remote sink")
	}

	positive := map[string]int{
		"worker count":   c.WorkerCount,
		"upsert workers": c.UpsertWorkers,
		"fetch attempts": c.FetchAttempts,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be positive")
	}
	if c.FetchBackoff < 0 || c.FetchRate < 0 || c.CacheTTL < 0 {
		return fmt.Errorf("fetch backoff, fetch rate and cache TTL must be non-negative")
	}

	return nil
}

func fromRaw(raw rawCfg) *Cfg {
	return &Cfg{
		Command:       raw.Command,
		FeedsFile:     raw.FeedsFile,
		CountriesFile: raw.CountriesFile,
		Sink:          raw.Sink,
		OutputDir:     raw.OutputDir,
		DBDriver:      raw.DBDriver,
		DBDSN:         raw.DBDSN,
		WorkerCount:   raw.WorkerCount,
		UpsertWorkers: raw.UpsertWorkers,
		FetchTimeout:  time.Duration(raw.FetchTimeout) * time.Second,
		FetchAttempts: raw.FetchAttempts,
		FetchBackoff:  time.Duration(raw.FetchBackoff) * time.Millisecond,
		FetchRate:     raw.FetchRate,
		RunTimeout:    time.Duration(raw.RunTimeout) * time.Second,
		RedisAddr:     raw.RedisAddr,
		CacheTTL:      time.Duration(raw.CacheTTL) * time.Second,
		Port:          raw.Port,
		APIAccessKey:  raw.APIAccessKey,
		UserAgent:     cmp.Or(raw.UserAgent, DefaultUserAgent),
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
