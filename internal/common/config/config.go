// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Server       ServerConfig            `mapstructure:"server"`
	AWS          AWSConfig               `mapstructure:"aws"`
	Geocoding    GeocodingConfig         `mapstructure:"geocoding"`
	Notification NotificationConfig      `mapstructure:"notification"`
	Classifier   ClassifierConfig        `mapstructure:"classifier"`
	Normalizer   NormalizerConfig        `mapstructure:"normalizer"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type CamundaConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BrokerAddress string `mapstructure:"broker_address"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Collaborators ---

// AWSConfig holds the blob store, text detection and notification fan-out settings.
type AWSConfig struct {
	Region string `mapstructure:"region"`
	S3     struct {
		Bucket string `mapstructure:"bucket"`
		// PublicRegion is the region used when building public object URLs.
		PublicRegion string `mapstructure:"public_region"`
		ContentType  string `mapstructure:"content_type"`
	} `mapstructure:"s3"`
	Rekognition struct {
		MinConfidence float64 `mapstructure:"min_confidence"`
	} `mapstructure:"rekognition"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"ses"`
}

type GeocodingConfig struct {
	BaseURL  string  `mapstructure:"base_url"`
	APIKey   string  `mapstructure:"api_key"`
	Timeout  int     `mapstructure:"timeout"` // milliseconds, 0 = no timeout
	Language string  `mapstructure:"language"`
	Rate     float64 `mapstructure:"rate"` // requests per second, 0 = unlimited
	Burst    int     `mapstructure:"burst"`
	Cache    struct {
		Enabled bool   `mapstructure:"enabled"`
		TTL     int    `mapstructure:"ttl"` // seconds
		Prefix  string `mapstructure:"prefix"`
	} `mapstructure:"cache"`
}

type NotificationConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

// ClassifierConfig carries the locale-specific text matching rules.
type ClassifierConfig struct {
	SaleTokens   []string `mapstructure:"sale_tokens"`
	RentTokens   []string `mapstructure:"rent_tokens"`
	PhonePattern string   `mapstructure:"phone_pattern"`
}

type NormalizerConfig struct {
	JPEGQuality int  `mapstructure:"jpeg_quality"`
	KeepExif    bool `mapstructure:"keep_exif"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
