package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./jobpool.db" description:"Path to the SQLite database file"`

	// Application configuration
	ProfilesDir         string `long:"profiles-dir" env:"PROFILES_DIR" default:"./profiles" description:"Directory containing user profile files"`
	Port                string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount         int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of concurrent scrape workers per run"`
	ScrapeSchedule      string `long:"scrape-schedule" env:"SCRAPE_SCHEDULE" default:"0 */6 * * *" description:"Cron schedule for scrape and ingest runs"`
	CountryLimit        int    `long:"country-limit" env:"COUNTRY_LIMIT" default:"500" description:"Maximum number of retained postings per country"`
	SignatureWindowDays int    `long:"signature-window-days" env:"SIGNATURE_WINDOW_DAYS" default:"30" description:"Repost suppression window in days"`
	ScrapeTimeout       int    `long:"scrape-timeout" env:"SCRAPE_TIMEOUT" default:"45" description:"Per-source fetch timeout in seconds"`
	ScraperURL          string `long:"scraper-url" env:"SCRAPER_URL" description:"Base URL of the external scraper service"`
	APIAccessKey        string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Cache configuration
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the view cache (optional, disabled when empty)"`
	ViewCacheTTL int    `long:"view-cache-ttl" env:"VIEW_CACHE_TTL" default:"300" description:"View cache TTL in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"JobPool/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		ProfilesDir:         raw.ProfilesDir,
		Port:                raw.Port,
		WorkerCount:         raw.WorkerCount,
		ScrapeSchedule:      raw.ScrapeSchedule,
		CountryLimit:        raw.CountryLimit,
		SignatureWindowDays: raw.SignatureWindowDays,
		ScrapeTimeout:       raw.ScrapeTimeout,
		ScraperURL:          raw.ScraperURL,
		APIAccessKey:        raw.APIAccessKey,
		RedisAddr:           raw.RedisAddr,
		ViewCacheTTL:        raw.ViewCacheTTL,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
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
