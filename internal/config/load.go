package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. STUDY_SERVER_PORT.
const EnvPrefix = "STUDY"

var configKeys = []string{
	"server.port",
	"server.log_level",
	"server.log_file",
	"server.shutdown_timeout",
	"storage.driver",
	"storage.sqlite_path",
	"storage.postgres_url",
	"storage.redis_addr",
	"storage.redis_prefix",
	"storage.seed_on_start",
	"generation.workers",
	"generation.queue_size",
	"generation.timeout",
	"generation.latency",
	"generation.auto_generate",
	"srs.min_ease_factor",
	"srs.first_interval",
	"srs.second_interval",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.sqlite_path", "studyhall.db")
	v.SetDefault("storage.redis_prefix", "studyhall:")
	v.SetDefault("storage.seed_on_start", true)
	v.SetDefault("generation.workers", 2)
	v.SetDefault("generation.queue_size", 64)
	v.SetDefault("generation.timeout", "30s")
	v.SetDefault("generation.latency", "0s")
	v.SetDefault("generation.auto_generate", false)
}

// Load reads configuration from the optional YAML file at path, then from
// STUDY_ prefixed environment variables, falling back to defaults.
// Environment variables take precedence over values from the file.
// An empty path looks for config.yaml in the working directory; a missing
// file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a configuration built by hand or by Load.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
