package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

// Record store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

const devCredential = "development-placeholder"

type Config struct {
	Port                  string        `mapstructure:"PORT"`
	Env                   string        `mapstructure:"ENV"`
	CORSOrigins           []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS          float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit             string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout        time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RecordStore           string        `mapstructure:"RECORD_STORE"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32         `mapstructure:"DB_MIN_CONNS"`
	SQLitePath            string        `mapstructure:"SQLITE_PATH"`
	MigrationsDir         string        `mapstructure:"MIGRATIONS_DIR"`
	SlackToken            string        `mapstructure:"SLACK_TOKEN"`
	SlackChannel          string        `mapstructure:"SLACK_CHANNEL"`
	NotionToken           string        `mapstructure:"NOTION_TOKEN"`
	NotionDatabaseID      string        `mapstructure:"NOTION_DATABASE_ID"`
	GoogleToken           string        `mapstructure:"GOOGLE_TOKEN"`
	GoogleRefreshToken    string        `mapstructure:"GOOGLE_REFRESH_TOKEN"`
	EmailSender           string        `mapstructure:"EMAIL_SENDER"`
	HospitalName          string        `mapstructure:"HOSPITAL_NAME"`
	HospitalAPIURL        string        `mapstructure:"HOSPITAL_API_URL"`
	HospitalAPIKey        string        `mapstructure:"HOSPITAL_API_KEY"`
	ExecutionHistoryLimit int           `mapstructure:"EXECUTION_HISTORY_LIMIT"`

	// PlaceholderCredentials lists the integration keys that were filled
	// with development placeholders.
	PlaceholderCredentials []string `mapstructure:"-"`
}

var envKeys = []string{
	"PORT", "ENV", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"BODY_LIMIT", "REQUEST_TIMEOUT", "RECORD_STORE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"SQLITE_PATH", "MIGRATIONS_DIR",
	"SLACK_TOKEN", "SLACK_CHANNEL", "NOTION_TOKEN", "NOTION_DATABASE_ID",
	"GOOGLE_TOKEN", "GOOGLE_REFRESH_TOKEN", "EMAIL_SENDER", "HOSPITAL_NAME",
	"HOSPITAL_API_URL", "HOSPITAL_API_KEY", "EXECUTION_HISTORY_LIMIT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("RECORD_STORE", StoreMemory)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("SQLITE_PATH", "pathflow.db")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("SLACK_CHANNEL", "#scheduling")
	v.SetDefault("EMAIL_SENDER", "appointments@tokyogeneral.example.com")
	v.SetDefault("HOSPITAL_NAME", "Tokyo General Hospital")
	v.SetDefault("HOSPITAL_API_URL", "https://api.hospital.example.com")
	v.SetDefault("EXECUTION_HISTORY_LIMIT", 100)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.RecordStore = strings.ToLower(strings.TrimSpace(cfg.RecordStore))

	if cfg.IsDev() {
		cfg.fillDevCredentials()
	}

	return cfg, nil
}

// fillDevCredentials substitutes placeholders for integration credentials so
// the mock integrations can be constructed locally without secrets.
func (c *Config) fillDevCredentials() {
	fields := []struct {
		key string
		val *string
	}{
		{"SLACK_TOKEN", &c.SlackToken},
		{"NOTION_TOKEN", &c.NotionToken},
		{"NOTION_DATABASE_ID", &c.NotionDatabaseID},
		{"GOOGLE_TOKEN", &c.GoogleToken},
		{"GOOGLE_REFRESH_TOKEN", &c.GoogleRefreshToken},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.val) == "" {
			*f.val = devCredential
			c.PlaceholderCredentials = append(c.PlaceholderCredentials, f.key)
		}
	}
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. The record store
// backend must be known and carry its connection settings. Outside
// development every integration credential must be present.
func (c *Config) Validate() error {
	switch c.RecordStore {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when RECORD_STORE is %q", StoreSQLite)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when RECORD_STORE is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("RECORD_STORE must be %q, %q, or %q, got %q",
			StoreMemory, StoreSQLite, StorePostgres, c.RecordStore)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}

	if c.ExecutionHistoryLimit <= 0 {
		return fmt.Errorf("EXECUTION_HISTORY_LIMIT must be positive, got %d", c.ExecutionHistoryLimit)
	}

	if !c.IsDev() {
		required := map[string]string{
			"SLACK_TOKEN":          c.SlackToken,
			"NOTION_TOKEN":         c.NotionToken,
			"NOTION_DATABASE_ID":   c.NotionDatabaseID,
			"GOOGLE_TOKEN":         c.GoogleToken,
			"GOOGLE_REFRESH_TOKEN": c.GoogleRefreshToken,
		}
		for _, key := range []string{"SLACK_TOKEN", "NOTION_TOKEN", "NOTION_DATABASE_ID", "GOOGLE_TOKEN", "GOOGLE_REFRESH_TOKEN"} {
			if strings.TrimSpace(required[key]) == "" {
				return fmt.Errorf("%s is required when ENV=%q: %w", key, c.Env, apperr.ErrConfiguration)
			}
		}
	}

	return nil
}
