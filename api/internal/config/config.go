package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is loaded from defaults, then the YAML file, then env vars.
// Env vars win.
type Config struct {
	TelegramBotToken string  `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	Operators        []int64 `yaml:"operators" env:"OPERATORS" envSeparator:","`

	CooldownSeconds     int           `yaml:"cooldown_seconds" env:"SEND_COOLDOWN_SECONDS"`
	MediaGroupDelay     time.Duration `yaml:"media_group_delay" env:"MEDIA_GROUP_DELAY"`
	MediaGroupTombstone time.Duration `yaml:"media_group_tombstone" env:"MEDIA_GROUP_TOMBSTONE"`
	ClearSchedule       string        `yaml:"clear_schedule" env:"CLEAR_SCHEDULE"`
	Timezone            string        `yaml:"timezone" env:"TIMEZONE"`

	Port           string        `yaml:"port" env:"PORT"`
	WebhookURL     string        `yaml:"webhook_url" env:"WEBHOOK_URL"`
	PollRetryDelay time.Duration `yaml:"poll_retry_delay" env:"POLL_RETRY_DELAY"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`

	OperatorStore string `yaml:"operator_store" env:"OPERATOR_STORE"`
	DatabaseURL   string `yaml:"database_url" env:"DATABASE_URL"`
	SQLitePath    string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	RedisURL      string `yaml:"redis_url" env:"REDIS_URL"`

	// Path of the YAML file this config was read from. The file operator
	// store rewrites it.
	File string `yaml:"-" env:"RELAY_CONFIG"`
}

const DefaultFile = "config.yaml"

func Default() *Config {
	return &Config{
		CooldownSeconds:     60,
		MediaGroupDelay:     1200 * time.Millisecond,
		MediaGroupTombstone: time.Minute,
		ClearSchedule:       "0 3 * * *",
		Timezone:            "Europe/Moscow",
		Port:                "8080",
		PollRetryDelay:      10 * time.Second,
		LogLevel:            "info",
		OperatorStore:       "file",
		SQLitePath:          "relay.db",
		File:                DefaultFile,
	}
}

// Load builds the config. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("RELAY_CONFIG")); v != "" {
		cfg.File = v
	}

	b, err := os.ReadFile(cfg.File)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", cfg.File, err)
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfg.File, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validStores = map[string]bool{"file": true, "postgres": true, "sqlite": true, "redis": true}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		errs = append(errs, errors.New("bot token is empty: set TELEGRAM_BOT_TOKEN or bot_token"))
	}
	if c.CooldownSeconds < 0 {
		errs = append(errs, fmt.Errorf("cooldown_seconds must be >= 0, got %d", c.CooldownSeconds))
	}
	if c.MediaGroupDelay <= 0 {
		errs = append(errs, fmt.Errorf("media_group_delay must be > 0, got %s", c.MediaGroupDelay))
	}
	if c.MediaGroupTombstone < 0 {
		errs = append(errs, fmt.Errorf("media_group_tombstone must be >= 0, got %s", c.MediaGroupTombstone))
	}
	if c.PollRetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("poll_retry_delay must be > 0, got %s", c.PollRetryDelay))
	}
	if !gronx.New().IsValid(c.ClearSchedule) {
		errs = append(errs, fmt.Errorf("clear_schedule %q is not a valid cron expression", c.ClearSchedule))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if !validStores[c.OperatorStore] {
		errs = append(errs, fmt.Errorf("operator_store %q: want file, postgres, sqlite or redis", c.OperatorStore))
	}
	if c.OperatorStore == "redis" && c.RedisURL == "" {
		errs = append(errs, errors.New("operator_store redis requires REDIS_URL"))
	}
	return errors.Join(errs...)
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Location returns the configured zone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
