// internal/workers/photo/process-photo/config.go
package processphoto

import (
	"time"

	"listing-photos/internal/common/config"
)

type Config struct {
	// Timeout bounds one pipeline run, Zeebe jobs included.
	Timeout time.Duration
	// KeyDateLayout formats the UTC date prefix of storage keys.
	KeyDateLayout string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       60 * time.Second,
		KeyDateLayout: "2006-01-02",
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	c := LoadConfig()
	if cfg.Server.RequestTimeout > 0 {
		c.Timeout = config.GetDuration(cfg.Server.RequestTimeout)
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	return c
}
