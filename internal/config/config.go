package config

import (
	"fmt"

	pkgconfig "github.com/orlengos-star/Your-Day-MiniApp/pkg/config"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/database"
)

// devBotToken is the placeholder accepted only in development.
const devBotToken = "dev-bot-token"

// Config holds all configuration for the journaling service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"yourday"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"yourday_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"yourday"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Telegram
	BotToken    string `env:"TELEGRAM_BOT_TOKEN" envDefault:"dev-bot-token"`
	BotUsername string `env:"TELEGRAM_BOT_USERNAME" envDefault:"yourday_bot"`
	// MiniAppLink is attached to notifications as the "Open" button target.
	MiniAppLink string `env:"MINI_APP_LINK" envDefault:"https://t.me/yourday_bot/app"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// Outside development a real bot token is mandatory; init data
	// verification is only as strong as the token it is keyed with.
	if cfg.Environment != "development" {
		if cfg.BotToken == devBotToken || cfg.BotToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
	}

	return cfg, nil
}

// Postgres maps the flat environment fields onto a pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}
