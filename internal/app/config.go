package app

import "time"

// DefaultUserAgent is a desktop browser UA; many sites serve reduced pages
// to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// Config holds runtime configuration for the application.
type Config struct {
	// Server
	Addr string

	// Fetch
	UserAgent       string
	AcceptLanguage  string
	FetchTimeout    time.Duration
	AltFetchTimeout time.Duration
	MaxAttempts     int
	RetryBackoff    time.Duration
	RedirectMaxHops int

	// Behavior
	PreferAlt     bool
	Workers       int
	SiteRulesPath string

	// Cache
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	Verbose bool
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		UserAgent:       DefaultUserAgent,
		AcceptLanguage:  "ja,en;q=0.8",
		FetchTimeout:    20 * time.Second,
		AltFetchTimeout: 15 * time.Second,
		MaxAttempts:     4,
		RetryBackoff:    600 * time.Millisecond,
		RedirectMaxHops: 10,
		PreferAlt:       true,
	}
}
