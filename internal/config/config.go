package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	SRS        SRSConfig        `mapstructure:"srs"`
}

// ServerConfig contains the HTTP server and logging settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile, when set, receives a rotated copy of every log line.
	LogFile string `mapstructure:"log_file"`
	// ShutdownTimeout bounds graceful shutdown of the HTTP server and workers.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// StorageConfig selects and configures the key-value backend behind the library.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres redis"`

	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresURL string `mapstructure:"postgres_url" validate:"required_if=Driver postgres,omitempty,url"`
	RedisAddr   string `mapstructure:"redis_addr" validate:"required_if=Driver redis,omitempty,hostname_port"`
	// RedisPrefix namespaces every key written to redis.
	RedisPrefix string `mapstructure:"redis_prefix"`

	// SeedOnStart loads the bundled sample library when the store is empty.
	SeedOnStart bool `mapstructure:"seed_on_start"`
}

// GenerationConfig sizes the background generation pipeline.
type GenerationConfig struct {
	Workers   int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	QueueSize int           `mapstructure:"queue_size" validate:"gte=1"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// Latency is the simulated think time of the local generator.
	Latency time.Duration `mapstructure:"latency" validate:"gte=0"`
	// AutoGenerate enqueues generation for every newly added material.
	AutoGenerate bool `mapstructure:"auto_generate"`
}

// SRSConfig overrides scheduler parameters. Zero values keep the defaults.
type SRSConfig struct {
	MinEaseFactor  float64       `mapstructure:"min_ease_factor" validate:"omitempty,gte=1.3"`
	FirstInterval  time.Duration `mapstructure:"first_interval" validate:"gte=0"`
	SecondInterval time.Duration `mapstructure:"second_interval" validate:"gte=0"`
}
