package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching .cppdoc/ under rootDir. A missing file is an error.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CPPDOC_*)
// 2. Config file (.cppdoc/config.yml or .cppdoc/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".cppdoc"))
	}

	// Replace . with _ in env var names (e.g., CPPDOC_EXTRACT_MAX_BLANK_LINES)
	v.SetEnvPrefix("CPPDOC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Extract configuration
	v.BindEnv("extract.max_blank_lines")
	v.BindEnv("extract.trailing_comments")
	v.BindEnv("extract.member_groups")

	// Storage configuration
	v.BindEnv("storage.database")

	// Index configuration
	v.BindEnv("index.workers")
	v.BindEnv("index.cache_size")
	v.BindEnv("index.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extract.max_blank_lines", defaults.Extract.MaxBlankLines)
	v.SetDefault("extract.trailing_comments", defaults.Extract.TrailingComments)
	v.SetDefault("extract.member_groups", defaults.Extract.MemberGroups)

	v.SetDefault("paths.headers", defaults.Paths.Headers)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("storage.database", defaults.Storage.Database)

	v.SetDefault("index.workers", defaults.Index.Workers)
	v.SetDefault("index.cache_size", defaults.Index.CacheSize)
	v.SetDefault("index.debounce_ms", defaults.Index.DebounceMS)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
