// Package config loads the sfs tool configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultCapacity is the maximum image size used when neither the
// config file nor the --capacity flag sets one.
const DefaultCapacity = 4 * 1024 * 1024

// Config holds the sfs tool settings.
type Config struct {
	Capacity  int64  `mapstructure:"capacity"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Progress  bool   `mapstructure:"progress"`
}

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	// Set defaults
	viper.SetDefault("capacity", int64(DefaultCapacity))
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("progress", true)

	// Config file handling
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("sfs")
		viper.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", cfg.Capacity)
	}

	return &cfg, nil
}
