// Package config loads the explicit configuration object handed to the
// storage engine and the optional security layer.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Constructors receive this explicitly;
// core logic never reads the environment on its own.
type Config struct {
	DBPath     string           `yaml:"db_path" mapstructure:"db_path"`
	Encryption EncryptionConfig `yaml:"encryption" mapstructure:"encryption"`
	Privacy    PrivacyConfig    `yaml:"privacy" mapstructure:"privacy"`
}

// EncryptionConfig controls the optional content/context encryption.
type EncryptionConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Password string `yaml:"password" mapstructure:"password"`
}

// PrivacyConfig controls content screening and retention.
type PrivacyConfig struct {
	BlockedKeywords []string `yaml:"blocked_keywords" mapstructure:"blocked_keywords"`
	RetentionDays   int      `yaml:"retention_days" mapstructure:"retention_days"`
	MaskSensitive   bool     `yaml:"mask_sensitive" mapstructure:"mask_sensitive"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DBPath: filepath.Join(home, ".ctxmem", "memories.db"),
	}
}

// Load reads config.yaml from the working directory or the user config dir,
// layered with CTXMEM_* environment variables over the defaults. A missing
// config file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "ctxmem"))
	}
	home, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(home, ".config", "ctxmem"))

	viper.SetEnvPrefix("CTXMEM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file; defaults plus env.
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
