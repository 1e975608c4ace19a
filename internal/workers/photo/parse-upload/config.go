// internal/workers/photo/parse-upload/config.go
package parseupload

import "listing-photos/internal/common/config"

type Config struct {
	// MaxBytes bounds the decoded image size; zero means unbounded.
	MaxBytes int64
}

func LoadConfig() *Config {
	return &Config{
		MaxBytes: 20 << 20,
	}
}

func FromAppConfig(c config.ServerConfig) *Config {
	cfg := LoadConfig()
	if c.MaxUploadBytes > 0 {
		cfg.MaxBytes = c.MaxUploadBytes
	}
	return cfg
}
