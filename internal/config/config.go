package config

// Config represents the complete cppdoc configuration.
// It can be loaded from .cppdoc/config.yml with environment variable overrides.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Index   IndexConfig   `yaml:"index" mapstructure:"index"`
}

// ExtractConfig controls how documentation comments are bound to declarations.
type ExtractConfig struct {
	MaxBlankLines    int  `yaml:"max_blank_lines" mapstructure:"max_blank_lines"`     // blank lines tolerated between a doc run and its declaration
	TrailingComments bool `yaml:"trailing_comments" mapstructure:"trailing_comments"` // honour `///<` trailing documentation
	MemberGroups     bool `yaml:"member_groups" mapstructure:"member_groups"`         // honour `////` member group markers
}

// PathsConfig defines which headers to index and which to ignore.
type PathsConfig struct {
	Headers []string `yaml:"headers" mapstructure:"headers"` // glob patterns for header files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// StorageConfig defines where extracted symbols are persisted.
type StorageConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // SQLite path, relative to the project root
}

// IndexConfig tunes the indexer.
type IndexConfig struct {
	Workers    int `yaml:"workers" mapstructure:"workers"`         // parallel extractions, 0 means GOMAXPROCS
	CacheSize  int `yaml:"cache_size" mapstructure:"cache_size"`   // extraction results kept in memory
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before a watch re-index
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			MaxBlankLines:    0,
			TrailingComments: true,
			MemberGroups:     true,
		},
		Paths: PathsConfig{
			Headers: []string{
				"**/*.h",
				"**/*.hh",
				"**/*.hpp",
				"**/*.hxx",
			},
			Ignore: []string{
				".git/**",
				"build/**",
				"third_party/**",
				"vendor/**",
				"node_modules/**",
			},
		},
		Storage: StorageConfig{
			Database: ".cppdoc/symbols.db",
		},
		Index: IndexConfig{
			Workers:    0,
			CacheSize:  1024,
			DebounceMS: 500,
		},
	}
}

// HeaderExtensions extracts unique file extensions from the header patterns.
// Returns extensions with leading dot (e.g., []string{".h", ".hpp"}).
func (c *Config) HeaderExtensions() []string {
	seen := make(map[string]bool)
	var extensions []string
	for _, pattern := range c.Paths.Headers {
		if ext := extractExtension(pattern); ext != "" && !seen[ext] {
			seen[ext] = true
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Examples: "**/*.h" -> ".h", "*.hpp" -> ".hpp", "include/**" -> ""
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
