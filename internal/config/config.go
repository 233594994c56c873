// Package config loads server configuration from a YAML file with
// environment variable overrides under the TASKBOARD_ prefix.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level server configuration.
type Config struct {
	Env      string `mapstructure:"env"`
	Port     string `mapstructure:"port"`
	DBPath   string `mapstructure:"db_path"`
	LogsPath string `mapstructure:"logs_path"`

	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig holds token signing settings. The secret has no default: it must
// come from the config file or TASKBOARD_JWT_SECRET.
type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

// TTL returns the token lifetime as a duration.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads configuration from the given YAML file path using Viper.
// A missing file is fine; defaults and environment variables apply either way.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "taskboard.db")
	v.SetDefault("logs_path", "taskboard.log")
	v.SetDefault("jwt.ttl_minutes", 24*60)
	// Registering the key lets AutomaticEnv resolve TASKBOARD_JWT_SECRET
	// during Unmarshal; env values for unknown keys are otherwise ignored.
	v.SetDefault("jwt.secret", "")

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, pathErr := err.(*os.PathError)
		_, notFoundErr := err.(viper.ConfigFileNotFoundError)
		if !pathErr && !notFoundErr {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required (set TASKBOARD_JWT_SECRET)")
	}

	return &cfg, nil
}
