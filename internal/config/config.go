package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds client configuration
type Config struct {
	BackendURL string `yaml:"backend_url"`
	UserRole   string `yaml:"user_role"`

	DatabaseType string `yaml:"db_type"`
	DatabasePath string `yaml:"db_path"`
	DatabaseURL  string `yaml:"database_url"`

	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	GatePollInterval  time.Duration `yaml:"gate_poll_interval"`
	OTPResendInterval time.Duration `yaml:"otp_resend_interval"`

	// WindowPolicy is what a settings response without windows means:
	// "keep" (default), "open" or "closed"
	WindowPolicy string `yaml:"window_policy"`

	// SessionEncryptionKey seals the persisted session record when set
	SessionEncryptionKey string `yaml:"session_encryption_key"`

	DeliveryFee string `yaml:"delivery_fee"`
	TaxRate     string `yaml:"tax_rate"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Debug     bool   `yaml:"debug"`

	// Support escalation over SES (disabled when SESFromEmail is empty)
	AWSRegion    string `yaml:"aws_region"`
	SESFromEmail string `yaml:"ses_from_email"`
	SESFromName  string `yaml:"ses_from_name"`
	SupportEmail string `yaml:"support_email"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		BackendURL:        "http://localhost:8000",
		UserRole:          "customer",
		DatabaseType:      "sqlite",
		DatabasePath:      "./momskitchen.db",
		HTTPTimeout:       30 * time.Second,
		GatePollInterval:  60 * time.Second,
		OTPResendInterval: 30 * time.Second,
		WindowPolicy:      "keep",
		DeliveryFee:       "30",
		TaxRate:           "0.15",
		LogLevel:          "info",
		LogFormat:         "text",
		AWSRegion:         "us-east-1",
		SESFromName:       "Mom's Kitchen",
	}
}

// Load reads configuration from an optional .env file, an optional YAML file named by
// MOMSKITCHEN_CONFIG and then environment variables, in increasing precedence
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("MOMSKITCHEN_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(getEnv("BACKEND_URL", c.BackendURL)), "/")
	c.UserRole = getEnv("USER_ROLE", c.UserRole)
	c.DatabaseType = getEnv("DB_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.GatePollInterval = getEnvDuration("GATE_POLL_INTERVAL", c.GatePollInterval)
	c.OTPResendInterval = getEnvDuration("OTP_RESEND_INTERVAL", c.OTPResendInterval)
	c.WindowPolicy = getEnv("WINDOW_POLICY", c.WindowPolicy)
	c.SessionEncryptionKey = getEnv("SESSION_ENCRYPTION_KEY", c.SessionEncryptionKey)
	c.DeliveryFee = getEnv("DELIVERY_FEE", c.DeliveryFee)
	c.TaxRate = getEnv("TAX_RATE", c.TaxRate)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.SESFromEmail = getEnv("SES_FROM_EMAIL", c.SESFromEmail)
	c.SESFromName = getEnv("SES_FROM_NAME", c.SESFromName)
	c.SupportEmail = getEnv("SUPPORT_EMAIL", c.SupportEmail)
}

// Validate checks the configuration for values the client cannot run with
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL is required")
	}
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	switch c.WindowPolicy {
	case "keep", "open", "closed", "":
	default:
		return fmt.Errorf("unsupported window policy: %s", c.WindowPolicy)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.GatePollInterval <= 0 {
		return fmt.Errorf("gate poll interval must be positive")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
