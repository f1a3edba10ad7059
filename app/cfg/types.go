package cfg

type Cfg struct {
	// Application configuration
	Port         string
	DBPath       string
	ProvidersDir string
	GeocoderURL  string

	// Fetch orchestration
	CacheTTLMinutes      int
	MaxConcurrentFetches int
	RequestTimeoutMs     int

	// Provider credentials (absence disables the provider)
	CityLifeAPIKey string
	MuseumsAPIKey  string

	// Cache warming
	WarmCities        []string
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	APIAccessKey string
	UserAgent    string
	Timezone     string
	Debug        bool
	Version      string
}
