// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPhonePattern matches "(area) local" and "local only" Brazilian phone shapes.
const DefaultPhonePattern = `(\(?\d{2}\)?\s?\d{4,5}[-\s]?\d{4})|(\d{4,5}[-\s]?\d{4})`

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	// aws.s3.bucket <- AWS_S3_BUCKET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "listing-photos")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 60000)
	v.SetDefault("server.max_upload_bytes", 20<<20)

	v.SetDefault("aws.region", "us-east-2")
	v.SetDefault("aws.s3.bucket", "")
	v.SetDefault("aws.s3.public_region", "")
	v.SetDefault("aws.s3.content_type", "image/jpeg")
	v.SetDefault("aws.rekognition.min_confidence", 0)
	v.SetDefault("aws.sns.enabled", false)
	v.SetDefault("aws.sns.topic_arn", "")
	v.SetDefault("aws.ses.enabled", false)
	v.SetDefault("aws.ses.from_email", "")
	v.SetDefault("aws.ses.to", []string{})

	v.SetDefault("geocoding.base_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("geocoding.api_key", "")
	v.SetDefault("geocoding.timeout", 0)
	v.SetDefault("geocoding.language", "")
	v.SetDefault("geocoding.rate", 0)
	v.SetDefault("geocoding.burst", 1)
	v.SetDefault("geocoding.cache.enabled", false)
	v.SetDefault("geocoding.cache.ttl", 86400)
	v.SetDefault("geocoding.cache.prefix", "geocode:")

	v.SetDefault("notification.webhook_url", "")
	v.SetDefault("notification.timeout", 5000)

	v.SetDefault("classifier.sale_tokens", []string{"vende"})
	v.SetDefault("classifier.rent_tokens", []string{"aluga"})
	v.SetDefault("classifier.phone_pattern", DefaultPhonePattern)

	v.SetDefault("normalizer.jpeg_quality", 90)
	v.SetDefault("normalizer.keep_exif", true)

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.max_jobs_active", 5)
	v.SetDefault("camunda.timeout", 60000)

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values. Unset
// variables expand to empty.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	override := func(dst *string, envName string) {
		if *dst == "" {
			if val := os.Getenv(envName); val != "" {
				*dst = val
			}
		}
	}

	override(&cfg.AWS.S3.Bucket, "BUCKET_NAME")
	override(&cfg.Geocoding.APIKey, "GOOGLE_API_KEY")
	override(&cfg.Notification.WebhookURL, "SHEET_WEBHOOK_URL")
	override(&cfg.AWS.SNS.TopicARN, "SNS_TOPIC_ARN")
	override(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	override(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
}

// applyDefaults fixes up values that survived unmarshalling as zero.
func applyDefaults(cfg *Config) {
	if cfg.AWS.S3.PublicRegion == "" {
		cfg.AWS.S3.PublicRegion = cfg.AWS.Region
	}
	if cfg.AWS.S3.ContentType == "" {
		cfg.AWS.S3.ContentType = "image/jpeg"
	}
	if cfg.Notification.Timeout <= 0 {
		cfg.Notification.Timeout = 5000
	}
	if cfg.Normalizer.JPEGQuality <= 0 || cfg.Normalizer.JPEGQuality > 100 {
		cfg.Normalizer.JPEGQuality = 90
	}
	if cfg.Classifier.PhonePattern == "" {
		cfg.Classifier.PhonePattern = DefaultPhonePattern
	}
	if cfg.Geocoding.Burst <= 0 {
		cfg.Geocoding.Burst = 1
	}
	if cfg.Geocoding.Cache.Prefix == "" {
		cfg.Geocoding.Cache.Prefix = "geocode:"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.AWS.S3.Bucket == "" {
		return fmt.Errorf("aws.s3.bucket is required")
	}
	if cfg.AWS.Region == "" {
		return fmt.Errorf("aws.region is required")
	}
	if cfg.AWS.SNS.Enabled && cfg.AWS.SNS.TopicARN == "" {
		return fmt.Errorf("aws.sns.topic_arn is required when sns is enabled")
	}
	if cfg.AWS.SES.Enabled && (cfg.AWS.SES.FromEmail == "" || len(cfg.AWS.SES.To) == 0) {
		return fmt.Errorf("aws.ses.from_email and aws.ses.to are required when ses is enabled")
	}
	if cfg.Geocoding.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when geocoding.cache is enabled")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
		MaxRetries:    3,
	}
}
