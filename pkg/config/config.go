package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort            string `mapstructure:"SERVER_PORT"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	RequestTimeoutSeconds int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`

	FetchMode           string `mapstructure:"FETCH_MODE"`
	FetchTimeoutSeconds int    `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	ImageTimeoutSeconds int    `mapstructure:"IMAGE_TIMEOUT_SECONDS"`
	MaxImageBytes       int64  `mapstructure:"MAX_IMAGE_BYTES"`
	ImageConcurrency    int    `mapstructure:"IMAGE_CONCURRENCY"`
	MaxImages           int    `mapstructure:"MAX_IMAGES"`
	MaxTextChars        int    `mapstructure:"MAX_TEXT_CHARS"`
	MaxPromptImages     int    `mapstructure:"MAX_PROMPT_IMAGES"`
	AmenityPolicy       string `mapstructure:"AMENITY_POLICY"`

	ModelEndpoint       string `mapstructure:"MODEL_ENDPOINT"`
	ModelName           string `mapstructure:"MODEL_NAME"`
	ModelAPIKey         string `mapstructure:"MODEL_API_KEY"`
	ModelTimeoutSeconds int    `mapstructure:"MODEL_TIMEOUT_SECONDS"`

	StorageEndpoint      string `mapstructure:"STORAGE_ENDPOINT"`
	StorageAccessKey     string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey     string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageBucket        string `mapstructure:"STORAGE_BUCKET"`
	StorageUseSSL        bool   `mapstructure:"STORAGE_USE_SSL"`
	StoragePublicBaseURL string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`
	StoragePrefix        string `mapstructure:"STORAGE_PREFIX"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	CacheTTLHours int    `mapstructure:"CACHE_TTL_HOURS"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":             "8080",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"REQUEST_TIMEOUT_SECONDS": 120,
	"FETCH_MODE":              "http",
	"FETCH_TIMEOUT_SECONDS":   30,
	"IMAGE_TIMEOUT_SECONDS":   20,
	"MAX_IMAGE_BYTES":         10 << 20,
	"IMAGE_CONCURRENCY":       5,
	"MAX_IMAGES":              5,
	"MAX_TEXT_CHARS":          40000,
	"MAX_PROMPT_IMAGES":       50,
	"AMENITY_POLICY":          "permissive",
	"MODEL_ENDPOINT":          "",
	"MODEL_NAME":              "",
	"MODEL_API_KEY":           "",
	"MODEL_TIMEOUT_SECONDS":   90,
	"STORAGE_ENDPOINT":        "",
	"STORAGE_ACCESS_KEY":      "",
	"STORAGE_SECRET_KEY":      "",
	"STORAGE_BUCKET":          "",
	"STORAGE_USE_SSL":         true,
	"STORAGE_PUBLIC_BASE_URL": "",
	"STORAGE_PREFIX":          "listings",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"CACHE_TTL_HOURS":         48,
	"POSTGRES_URL":            "",
}

// Load reads configuration from an optional .env file and environment variables.
// Environment variables win over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		// A missing file is fine, production is configured purely through the environment.
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so every key gets a default.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.FetchMode = strings.ToLower(strings.TrimSpace(cfg.FetchMode))
	cfg.AmenityPolicy = strings.ToLower(strings.TrimSpace(cfg.AmenityPolicy))
	return &cfg, nil
}

// Validate reports every setting the API server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.ModelEndpoint == "" {
		errs = append(errs, errors.New("MODEL_ENDPOINT is required"))
	}
	if c.ModelName == "" {
		errs = append(errs, errors.New("MODEL_NAME is required"))
	}
	if c.StorageEndpoint == "" {
		errs = append(errs, errors.New("STORAGE_ENDPOINT is required"))
	}
	if c.StorageBucket == "" {
		errs = append(errs, errors.New("STORAGE_BUCKET is required"))
	}
	switch c.FetchMode {
	case "http", "browser":
	default:
		errs = append(errs, fmt.Errorf("FETCH_MODE must be http or browser, got %q", c.FetchMode))
	}
	switch c.AmenityPolicy {
	case "permissive", "strict":
	default:
		errs = append(errs, fmt.Errorf("AMENITY_POLICY must be permissive or strict, got %q", c.AmenityPolicy))
	}
	if c.ImageConcurrency < 1 {
		errs = append(errs, errors.New("IMAGE_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) ImageTimeout() time.Duration {
	return time.Duration(c.ImageTimeoutSeconds) * time.Second
}

func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}
