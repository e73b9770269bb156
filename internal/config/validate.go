package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidBlankLines indicates a negative blank-line tolerance
	ErrInvalidBlankLines = errors.New("invalid max_blank_lines")

	// ErrEmptyHeaders indicates no header patterns were configured
	ErrEmptyHeaders = errors.New("empty header patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyDatabase indicates a missing storage database path
	ErrEmptyDatabase = errors.New("empty storage database")

	// ErrInvalidIndexSettings indicates invalid indexer tuning
	ErrInvalidIndexSettings = errors.New("invalid index settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}

	if err := validateIndex(&cfg.Index); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	if cfg.MaxBlankLines < 0 {
		return fmt.Errorf("%w: must not be negative, got %d", ErrInvalidBlankLines, cfg.MaxBlankLines)
	}
	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Headers) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one pattern required", ErrEmptyHeaders))
	}

	// Patterns use / as the separator, as the indexer compiles them
	for _, pattern := range append(append([]string{}, cfg.Headers...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateStorage(cfg *StorageConfig) error {
	if strings.TrimSpace(cfg.Database) == "" {
		return fmt.Errorf("%w: database path is required", ErrEmptyDatabase)
	}
	return nil
}

func validateIndex(cfg *IndexConfig) error {
	var errs []error

	// Zero workers means GOMAXPROCS
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidIndexSettings, cfg.Workers))
	}

	if cfg.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidIndexSettings, cfg.CacheSize))
	}

	if cfg.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidIndexSettings, cfg.DebounceMS))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every sentinel via errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{
		msg:  fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - ")),
		errs: errs,
	}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
