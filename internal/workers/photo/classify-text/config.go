// internal/workers/photo/classify-text/config.go
package classifytext

import "listing-photos/internal/common/config"

type Config struct {
	SaleTokens   []string
	RentTokens   []string
	PhonePattern string
}

func LoadConfig() *Config {
	return &Config{
		SaleTokens:   []string{"vende"},
		RentTokens:   []string{"aluga"},
		PhonePattern: config.DefaultPhonePattern,
	}
}

// FromAppConfig fills the gaps of the loaded classifier section with defaults.
func FromAppConfig(c config.ClassifierConfig) *Config {
	cfg := LoadConfig()
	if len(c.SaleTokens) > 0 {
		cfg.SaleTokens = c.SaleTokens
	}
	if len(c.RentTokens) > 0 {
		cfg.RentTokens = c.RentTokens
	}
	if c.PhonePattern != "" {
		cfg.PhonePattern = c.PhonePattern
	}
	return cfg
}
