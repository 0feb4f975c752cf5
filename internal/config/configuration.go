package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int    `mapstructure:"WEBSERVER_PORT" validate:"min=1,max=65535"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Database Configuration
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// Verification code store. An empty address keeps codes in process memory.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisUsername string `mapstructure:"REDIS_USERNAME"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Outgoing mail. Without an API key, mail is logged instead of sent.
	MailgunDomain  string `mapstructure:"MAILGUN_DOMAIN" validate:"required_with=MailgunAPIKey"`
	MailgunAPIKey  string `mapstructure:"MAILGUN_API_KEY"`
	MailSenderName string `mapstructure:"MAIL_SENDER_NAME"`

	// Upload storage
	StorageBackend string `mapstructure:"STORAGE_BACKEND" validate:"oneof=local s3"`
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	MaxUploadSize  string `mapstructure:"MAX_UPLOAD_SIZE"`
	S3Endpoint     string `mapstructure:"S3_ENDPOINT"`
	S3Region       string `mapstructure:"S3_REGION"`
	S3Bucket       string `mapstructure:"S3_BUCKET" validate:"required_if=StorageBackend s3"`
	S3PublicURL    string `mapstructure:"S3_PUBLIC_URL"`
	S3AccessKey    string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey    string `mapstructure:"S3_SECRET_KEY"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Info("Environment variables bound")
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 3000)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("MAIL_SENDER_NAME", "한사랑교회")
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", "10MB")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration",
		"port", cfg.WebServerPort,
		"database_retries", cfg.DatabaseRetries,
		"redis", cfg.RedisAddr != "",
		"mail", cfg.MailgunAPIKey != "",
		"storage", cfg.StorageBackend,
	)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if _, err := cfg.MaxUploadBytes(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// MaxUploadBytes parses MAX_UPLOAD_SIZE ("10MB", "512K", ...).
func (c *Config) MaxUploadBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("parse MAX_UPLOAD_SIZE %q: %w", c.MaxUploadSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return int64(n), nil
}
