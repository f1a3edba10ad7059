package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./citypulse.db" description:"Path to the sqlite cache database"`
	ProvidersDir string `long:"providers-dir" env:"PROVIDERS_DIR" default:"./providers" description:"Directory containing provider configuration files"`
	GeocoderURL  string `long:"geocoder-url" env:"GEOCODER_URL" default:"https://geocoding-api.open-meteo.com/v1/search" description:"Geocoding API endpoint"`

	// Fetch orchestration
	CacheTTLMinutes      int `long:"cache-ttl" env:"CACHE_TTL_MINUTES" default:"30" description:"Provider response cache TTL in minutes"`
	MaxConcurrentFetches int `long:"max-concurrent-fetches" env:"MAX_CONCURRENT_FETCHES" default:"4" description:"Maximum concurrent outbound provider requests"`
	RequestTimeoutMs     int `long:"request-timeout" env:"REQUEST_TIMEOUT_MS" default:"8000" description:"Per-request network timeout in milliseconds"`

	// Provider credentials
	CityLifeAPIKey string `long:"citylife-api-key" env:"CITYLIFE_API_KEY" description:"CityLife API key (provider disabled when empty)"`
	MuseumsAPIKey  string `long:"museums-api-key" env:"MUSEUMS_API_KEY" description:"Museums API key (provider disabled when empty)"`

	// Cache warming
	WarmCities        string `long:"warm-cities" env:"WARM_CITIES" description:"Comma-separated cities to keep provider caches warm for"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for cache warming"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Cache warming interval in seconds"`

	// Application metadata
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"CityPulse/1.0" description:"User agent string for HTTP requests"`
	Timezone     string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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
		Port:                 raw.Port,
		DBPath:               raw.DBPath,
		ProvidersDir:         raw.ProvidersDir,
		GeocoderURL:          raw.GeocoderURL,
		CacheTTLMinutes:      raw.CacheTTLMinutes,
		MaxConcurrentFetches: raw.MaxConcurrentFetches,
		RequestTimeoutMs:     raw.RequestTimeoutMs,
		CityLifeAPIKey:       raw.CityLifeAPIKey,
		MuseumsAPIKey:        raw.MuseumsAPIKey,
		WarmCities:           splitCities(raw.WarmCities),
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		APIAccessKey:         raw.APIAccessKey,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
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

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func splitCities(s string) []string {
	if s == "" {
		return nil
	}
	var cities []string
	for _, part := range strings.Split(s, ",") {
		if city := strings.TrimSpace(part); city != "" {
			cities = append(cities, city)
		}
	}
	return cities
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
