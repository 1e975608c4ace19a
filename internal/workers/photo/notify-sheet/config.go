// internal/workers/photo/notify-sheet/config.go
package notifysheet

import (
	"time"

	"listing-photos/internal/common/config"
)

type Config struct {
	WebhookURL string
	Timeout    time.Duration

	SNSEnabled bool
	SESEnabled bool
	Recipients []string
	Subject    string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Subject: "Nova foto de anúncio processada",
	}
}

func FromAppConfig(n config.NotificationConfig, aws config.AWSConfig) *Config {
	cfg := LoadConfig()
	cfg.WebhookURL = n.WebhookURL
	if n.Timeout > 0 {
		cfg.Timeout = config.GetDuration(n.Timeout)
	}
	cfg.SNSEnabled = aws.SNS.Enabled
	cfg.SESEnabled = aws.SES.Enabled
	cfg.Recipients = aws.SES.To
	return cfg
}
