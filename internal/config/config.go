// Package config provides the projgen tool's own settings using Viper.
package config

import (
	"github.com/spf13/viper"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/paths"
)

// EnvPrefix is prepended to setting names to form environment variables,
// for example PROJGEN_BAZEL_PATH.
const EnvPrefix = "PROJGEN"

// Setting keys.
const (
	KeyVersion   = "version"
	KeyBazelPath = "bazel_path"
	KeyUser      = "user"
	KeyLogFormat = "log_format"
)

// CurrentVersion is the only settings schema version understood.
const CurrentVersion = 1

// Config holds the tool settings.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`
	// BazelPath overrides the BazelPath option of every loaded project config.
	BazelPath string `mapstructure:"bazel_path" yaml:"bazel_path,omitempty"`
	// User replaces the login name when locating per-user overlays.
	User      string `mapstructure:"user" yaml:"user,omitempty"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(paths.SettingsDir())

	// Environment variable support
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault(KeyVersion, CurrentVersion)
	viper.SetDefault(KeyBazelPath, "")
	viper.SetDefault(KeyUser, "")
	viper.SetDefault(KeyLogFormat, LogFormatText)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit search found nothing; defaults apply.
		case path != "" && (isNotExist(err) || errors.As(err, &notFound)):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if cfg.BazelPath != "" {
		expanded, err := paths.ExpandHome(cfg.BazelPath)
		if err != nil {
			return nil, errors.Wrap(err, "expanding bazel_path")
		}
		cfg.BazelPath = expanded
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// FileUsed returns the settings file Load read, or "" when defaults were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
