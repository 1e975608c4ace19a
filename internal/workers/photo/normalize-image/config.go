// internal/workers/photo/normalize-image/config.go
package normalizeimage

import "listing-photos/internal/common/config"

type Config struct {
	JPEGQuality int
	// KeepExif copies the HEIC EXIF block into the converted JPEG.
	KeepExif bool
}

func LoadConfig() *Config {
	return &Config{
		JPEGQuality: 90,
		KeepExif:    true,
	}
}

func FromAppConfig(c config.NormalizerConfig) *Config {
	cfg := &Config{
		JPEGQuality: c.JPEGQuality,
		KeepExif:    c.KeepExif,
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}
	return cfg
}
