package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL      string        `yaml:"database_url"`
	DBConnectRetries int           `yaml:"db_connect_retries"`
	DBConnectBackoff time.Duration `yaml:"db_connect_backoff"`

	// Server
	APIPort       int    `yaml:"api_port"`
	PublicBaseURL string `yaml:"public_base_url"`

	// Storage
	AttachmentStoragePath string `yaml:"attachment_storage_path"`
	AttachmentConcurrency int    `yaml:"attachment_concurrency"`

	// Webhooks
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
	WebhookMaxSkew time.Duration `yaml:"webhook_max_skew"`

	// Transports
	MailgunAPIBase string `yaml:"mailgun_api_base"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Security
	APIKey         string `yaml:"api_key"`
	AllowedOrigins string `yaml:"allowed_origins"`
	AppEnv         string `yaml:"app_env"`

	// Rate Limiting
	RateLimitRequests float64 `yaml:"rate_limit_requests"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
}

// Load reads configuration from environment variables. When CONFIG_FILE is
// set, the YAML file is read first and the environment overrides it.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.APIPort = 8080
	c.DBConnectRetries = 5
	c.DBConnectBackoff = time.Second
	c.AttachmentStoragePath = "./attachments"
	c.AttachmentConcurrency = 3
	c.WebhookTimeout = 10 * time.Second
	c.WebhookMaxSkew = 5 * time.Minute
	c.MailgunAPIBase = "https://api.mailgun.net/v3"
	c.LogLevel = "info"
	c.AppEnv = "development"
	c.RateLimitRequests = 10.0
	c.RateLimitBurst = 20
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}

	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		c.APIPort = port
	}

	if v := os.Getenv("DB_CONNECT_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_RETRIES must be a valid integer: %w", err)
		}
		c.DBConnectRetries = n
	}

	if err := durationEnv("DB_CONNECT_BACKOFF", &c.DBConnectBackoff); err != nil {
		return err
	}
	if err := durationEnv("WEBHOOK_TIMEOUT", &c.WebhookTimeout); err != nil {
		return err
	}
	if err := durationEnv("WEBHOOK_MAX_SKEW", &c.WebhookMaxSkew); err != nil {
		return err
	}

	if v := os.Getenv("ATTACHMENT_STORAGE_PATH"); v != "" {
		c.AttachmentStoragePath = v
	}
	if v := os.Getenv("ATTACHMENT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ATTACHMENT_CONCURRENCY must be a valid integer: %w", err)
		}
		c.AttachmentConcurrency = n
	}

	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		c.PublicBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("MAILGUN_API_BASE"); v != "" {
		c.MailgunAPIBase = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	// Security configuration
	if v := os.Getenv("API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.AppEnv = v
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			c.RateLimitRequests = v
		}
	}
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			c.RateLimitBurst = v
		}
	}

	return nil
}

func durationEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	*dst = d
	return nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.AttachmentStoragePath == "" {
		return fmt.Errorf("AttachmentStoragePath cannot be empty")
	}
	if c.AttachmentConcurrency < 1 {
		return fmt.Errorf("AttachmentConcurrency must be at least 1")
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("WebhookTimeout must be positive")
	}
	if c.WebhookMaxSkew <= 0 {
		return fmt.Errorf("WebhookMaxSkew must be positive")
	}
	if c.DBConnectRetries < 0 {
		return fmt.Errorf("DBConnectRetries cannot be negative")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// Origins splits AllowedOrigins into a trimmed list
func (c *Config) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("storage_path", c.AttachmentStoragePath),
		slog.Int("attachment_concurrency", c.AttachmentConcurrency),
		slog.Duration("webhook_timeout", c.WebhookTimeout),
		slog.Duration("webhook_max_skew", c.WebhookMaxSkew),
		slog.Int("db_connect_retries", c.DBConnectRetries),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
