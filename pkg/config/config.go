package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	AppEnv             string   `mapstructure:"APP_ENV"`
	BaseURL            string   `mapstructure:"BASE_URL"`
	GoogleClientID     string   `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string   `mapstructure:"GOOGLE_REDIRECT_URL"`
	JWTSecret          string   `mapstructure:"JWT_SECRET"`
	FrontendURL        string   `mapstructure:"FRONTEND_URL"`
	AllowedEmailsRaw   string   `mapstructure:"ALLOWED_EMAILS"`
	AllowedEmails      []string `mapstructure:"-"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	// Cloudflare Workers KV edge cache
	CFAccountID     string `mapstructure:"CF_ACCOUNT_ID"`
	CFNamespaceID   string `mapstructure:"CF_KV_NAMESPACE_ID"`
	CFAPIToken      string `mapstructure:"CF_API_TOKEN"`
	CFAPIBaseURL    string `mapstructure:"CF_API_BASE_URL"`
	SyncSchedule    string `mapstructure:"SYNC_SCHEDULE"`
	SyncOnStartup   bool   `mapstructure:"SYNC_ON_STARTUP"`
	SyncHistorySize int    `mapstructure:"SYNC_HISTORY_LIMIT"`
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"DATABASE_URL":         "file:db.sqlite",
	"APP_ENV":              "local",
	"BASE_URL":             "http://localhost:8080",
	"GOOGLE_CLIENT_ID":     "",
	"GOOGLE_CLIENT_SECRET": "",
	"GOOGLE_REDIRECT_URL":  "http://localhost:8080/auth/google/callback",
	"JWT_SECRET":           "secret",
	"FRONTEND_URL":         "http://localhost:8080/dashboard",
	"ALLOWED_EMAILS":       "",
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
	"CF_ACCOUNT_ID":        "",
	"CF_KV_NAMESPACE_ID":   "",
	"CF_API_TOKEN":         "",
	"CF_API_BASE_URL":      "https://api.cloudflare.com/client/v4",
	"SYNC_SCHEDULE":        "*/5 * * * *",
	"SYNC_ON_STARTUP":      true,
	"SYNC_HISTORY_LIMIT":   50,
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedEmails = splitList(cfg.AllowedEmailsRaw)
	return &cfg, nil
}

// KVConfigured reports whether every credential the edge cache needs is set.
func (c *Config) KVConfigured() bool {
	return c.CFAccountID != "" && c.CFNamespaceID != "" && c.CFAPIToken != ""
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
