package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends for uploaded files.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

const devJWTSecret = "reliefnet-dev-secret"

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTTTL            time.Duration `mapstructure:"JWT_TTL"`
	JWTIssuer         string        `mapstructure:"JWT_ISSUER"`
	AdminBootstrapKey string        `mapstructure:"ADMIN_BOOTSTRAP_KEY"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	StorageBackend  string `mapstructure:"STORAGE_BACKEND"`
	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	MaxUploadFiles  int    `mapstructure:"MAX_UPLOAD_FILES"`
	MaxUploadSizeMB int64  `mapstructure:"MAX_UPLOAD_SIZE_MB"`
	GCSBucket       string `mapstructure:"GCS_BUCKET"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	EventsQueue string `mapstructure:"EVENTS_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
}

var defaults = map[string]interface{}{
	"PORT":               "5000",
	"GIN_MODE":           "debug",
	"CLIENT_URL":         "http://localhost:3000",
	"JWT_TTL":            "240h",
	"JWT_ISSUER":         "reliefnet",
	"STORAGE_BACKEND":    StorageLocal,
	"UPLOAD_DIR":         "uploads",
	"MAX_UPLOAD_FILES":   5,
	"MAX_UPLOAD_SIZE_MB": 10,
	"REDIS_DB":           0,
	"CACHE_TTL":          "10m",
	"EVENTS_QUEUE":       "relief.events",
	"SMTP_PORT":          587,
}

var keys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL",
	"JWT_SECRET", "JWT_TTL", "JWT_ISSUER", "ADMIN_BOOTSTRAP_KEY",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"STORAGE_BACKEND", "UPLOAD_DIR", "MAX_UPLOAD_FILES", "MAX_UPLOAD_SIZE_MB", "GCS_BUCKET",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"RABBITMQ_URL", "EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a .env file in the working directory is read first;
// variables already set in the environment win.
func LoadConfig() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.JWTSecret == "" {
		if c.IsRelease() {
			return errors.New("JWT_SECRET is required in release mode")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	switch c.StorageBackend {
	case StorageLocal:
	case StorageGCS:
		if c.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required when STORAGE_BACKEND is gcs")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageLocal, StorageGCS, c.StorageBackend)
	}
	if c.MaxUploadFiles < 1 {
		return errors.New("MAX_UPLOAD_FILES must be at least 1")
	}
	if c.MaxUploadSizeMB < 1 {
		return errors.New("MAX_UPLOAD_SIZE_MB must be at least 1")
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// MaxUploadBytes is the per-file upload limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB << 20
}
