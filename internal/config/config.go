// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Host string `env:"WEBCHAT_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"WEBCHAT_PORT" envDefault:"8080" validate:"gte=1,lte=65535"`

	Workers     int   `env:"BUS_WORKERS" envDefault:"2" validate:"gte=1"`
	QueueBuffer int64 `env:"QUEUE_BUFFER" envDefault:"64" validate:"gte=0"`
	HistorySize int   `env:"HISTORY_SIZE" envDefault:"50" validate:"gte=1"`

	SendTimeout time.Duration `env:"SEND_TIMEOUT" envDefault:"5s"`
	SettleDelay time.Duration `env:"REPLAY_SETTLE_DELAY" envDefault:"300ms"`

	ThemesDir  string   `env:"THEMES_DIR" envDefault:"themes"`
	ModulesDir string   `env:"MODULES_DIR" envDefault:"conf"`
	Modules    []string `env:"MODULES" envDefault:"blacklist,replacer"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	TwitchChannel  string `env:"TWITCH_CHANNEL"`
	TwitchUsername string `env:"TWITCH_BOT_USERNAME"`
	TwitchOAuth    string `env:"TWITCH_OAUTH_TOKEN"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TwitchEnabled reports whether the twitch connector has credentials.
func (c *Config) TwitchEnabled() bool {
	return c.TwitchChannel != "" && c.TwitchUsername != "" && c.TwitchOAuth != ""
}

// New loads configuration from a .env file (if present) and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
