package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional .env
// file. Environment variables take precedence over .env values, which take
// precedence over defaults. Returns a populated Config struct or an error if
// loading or validation fails.
func Load() (*Config, error) {
	// A .env file is a development convenience; its absence is not an error.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults for everything that has a sensible one. Database settings
	// have no default URL and must be provided.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "mnemo.db")
	v.SetDefault("scheduler.optimize_cron", "@daily")
	v.SetDefault("scheduler.node_id", 1)

	// Environment variables use the MNEMO_ prefix with underscores for
	// nesting, e.g. MNEMO_SERVER_PORT, MNEMO_DATABASE_URL.
	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
