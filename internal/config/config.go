// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// MinJWTSecretLength is the shortest HS256 secret accepted.
const MinJWTSecretLength = 32

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	TimeZone string `env:"TZ_NAME" envDefault:"Asia/Tokyo"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"dental_user"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:"dental_pass"`
	DBName         string `env:"DB_NAME" envDefault:"dentalboard"`
	DBSSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	DBConnectTries int    `env:"DB_CONNECT_RETRIES" envDefault:"10"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	NATSURL  string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Login attempts per IP per window, enforced in redis.
	LoginLimit       int64         `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginLimitWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
	// Per-IP token bucket for the rest of the API.
	APIRatePerSecond float64 `env:"API_RATE_PER_SECOND" envDefault:"20"`
	APIRateBurst     int     `env:"API_RATE_BURST" envDefault:"40"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	OpenRouterKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	GeocoderURL     string `env:"GEOCODER_URL" envDefault:"https://msearch.gsi.go.jp/address-search/AddressSearch"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
	ReportsDir  string `env:"REPORTS_DIR" envDefault:"./data/reports"`
	ChromeURL   string `env:"CHROME_WS_URL"`

	ReminderCron   string `env:"REMINDER_CRON" envDefault:"0 9 5 * *"`
	StaleSweepCron string `env:"STALE_REPORT_CRON" envDefault:"@hourly"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d", MinJWTSecretLength, len(c.JWTSecret)))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("TZ_NAME: %w", err))
	}
	if _, err := slogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{"REMINDER_CRON": c.ReminderCron, "STALE_REPORT_CRON": c.StaleSweepCron} {
		if _, err := parser.Parse(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.S3Bucket != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		errs = append(errs, errors.New("S3_BUCKET requires S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY"))
	}
	if c.DBConnectTries < 1 {
		errs = append(errs, errors.New("DB_CONNECT_RETRIES must be at least 1"))
	}
	return errors.Join(errs...)
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location returns the business time zone. Validate guarantees it loads.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseDSN is the lib/pq keyword DSN.
func (c Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// MigrateURL is the postgres URL form golang-migrate expects.
func (c Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func (c Config) UseS3() bool {
	return c.S3Bucket != ""
}

func (c Config) SlogLevel() slog.Level {
	level, _ := slogLevel(c.LogLevel)
	return level
}

// String renders the config for startup logs with secrets masked.
func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s db=%s@%s:%d/%s redis=%s nats=%s jwt_secret=%s slack=%t openrouter=%t s3=%t tz=%s",
		c.Env, c.HTTPAddr, c.DBUser, c.DBHost, c.DBPort, c.DBName,
		maskURL(c.RedisURL), maskURL(c.NATSURL), mask(c.JWTSecret),
		c.SlackWebhookURL != "", c.OpenRouterKey != "", c.UseS3(), c.TimeZone)
}

func slogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}
