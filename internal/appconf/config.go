package appconf

import "time"

// Config holds all the configuration settings for the service. Values are
// read from command-line flags in cmd/api.
type Config struct {
	Port            int
	Env             Environment
	ApiKeys         []string
	RateLimit       int
	CatalogPath     string
	OverridesPath   string
	DataDir         string
	CacheBackend    string
	CachePath       string
	RedisAddr       string
	RefreshInterval time.Duration
	YouTubeAPIKey   string
	GeminiAPIKey    string
}
