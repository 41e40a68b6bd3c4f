package cfg

import "time"

const (
	CommandScrape = "scrape"
	CommandServe  = "serve"

	SinkFile   = "file"
	SinkRemote = "remote"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Cfg struct {
	// Run configuration
	Command       string
	FeedsFile     string
	CountriesFile string
	Sink          string
	OutputDir     string

	// Database configuration
	DBDriver string
	DBDSN    string

	// Pipeline configuration
	WorkerCount   int
	UpsertWorkers int
	FetchTimeout  time.Duration
	FetchAttempts int
	FetchBackoff  time.Duration
	FetchRate     float64
	RunTimeout    time.Duration

	// Cache configuration
	RedisAddr string
	CacheTTL  time.Duration

	// HTTP configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
