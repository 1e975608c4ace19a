// internal/workers/photo/reverse-geocode/config.go
package reversegeocode

import (
	"time"

	"listing-photos/internal/common/config"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

type Config struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration

	// RateLimit is in requests per second; zero disables the limiter.
	RateLimit float64
	Burst     int

	CacheEnabled bool
	CacheTTL     time.Duration
	CachePrefix  string
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     10 * time.Second,
		Burst:       1,
		CacheTTL:    24 * time.Hour,
		CachePrefix: "geocode:",
	}
}

func FromAppConfig(c config.GeocodingConfig) *Config {
	cfg := LoadConfig()
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	cfg.APIKey = c.APIKey
	cfg.Language = c.Language
	// Zero disables the client timeout, matching geocoding.timeout's default.
	if c.Timeout >= 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	cfg.RateLimit = c.Rate
	if c.Burst > 0 {
		cfg.Burst = c.Burst
	}
	cfg.CacheEnabled = c.Cache.Enabled
	if c.Cache.TTL > 0 {
		cfg.CacheTTL = time.Duration(c.Cache.TTL) * time.Second
	}
	if c.Cache.Prefix != "" {
		cfg.CachePrefix = c.Cache.Prefix
	}
	return cfg
}
