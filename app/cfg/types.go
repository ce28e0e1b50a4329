package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	ProfilesDir         string
	Port                string
	WorkerCount         int
	ScrapeSchedule      string
	CountryLimit        int
	SignatureWindowDays int
	ScrapeTimeout       int
	ScraperURL          string
	APIAccessKey        string

	// Cache configuration
	RedisAddr    string
	ViewCacheTTL int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
