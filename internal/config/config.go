package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver selects the storage backend: "postgres" for a shared server
// deployment, "sqlite" for a single-user local file.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// SchedulerConfig contains settings for the background parameter
// optimization job.
type SchedulerConfig struct {
	// OptimizeCron is the cron expression for the periodic parameter
	// fitting run. An empty value disables the job.
	OptimizeCron string `mapstructure:"optimize_cron"`

	// NodeID seeds the snowflake generator used for review log IDs.
	NodeID int64 `mapstructure:"node_id" validate:"gte=0,lt=1024"`
}
