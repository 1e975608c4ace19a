// internal/workers/photo/extract-gps/config.go
package extractgps

type Config struct {
	// RejectOutOfRange reports coordinates outside ±90/±180 as failed.
	RejectOutOfRange bool
}

func LoadConfig() *Config {
	return &Config{
		RejectOutOfRange: true,
	}
}
