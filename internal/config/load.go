package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. ACCOUNTS_SERVER_PORT for server.port.
const EnvPrefix = "ACCOUNTS"

// keys without defaults still need binding so AutomaticEnv picks them up
// during Unmarshal.
var boundKeys = []string{
	"database.url",
	"firebase.project_id",
	"firebase.credentials_base64",
	"firebase.reset_continue_url",
	"storage.bucket",
	"smtp.host",
	"smtp.username",
	"smtp.password",
	"smtp.from",
	"redis.url",
}

// Load configuration from environment variables and optionally a config.yaml
// file in the working directory. Environment variables take precedence.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault(
		"firebase.jwks_url",
		"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com",
	)
	v.SetDefault("firebase.request_timeout_seconds", 10)

	v.SetDefault("storage.folder", "profiles")
	v.SetDefault("storage.public_base_url", "https://storage.googleapis.com")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.tls", true)

	v.SetDefault("redis.ttl_minutes", 15)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
}
