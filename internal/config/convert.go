package config

import (
	"path/filepath"
	"time"

	"github.com/mvp-joe/cppdoc/internal/extractor"
	"github.com/mvp-joe/cppdoc/internal/indexer"
)

// ToExtractorOptions converts the extract and index sections to extractor.Options.
func (c *Config) ToExtractorOptions() extractor.Options {
	opts := extractor.DefaultOptions()
	opts.Comments.MaxBlankLines = c.Extract.MaxBlankLines
	opts.Comments.Trailing = c.Extract.TrailingComments
	opts.Comments.Groups = c.Extract.MemberGroups
	opts.Workers = c.Index.Workers
	return opts
}

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the root directory of the headers to index.
func (c *Config) ToIndexerConfig(rootDir string) *indexer.Config {
	return &indexer.Config{
		RootDir:        rootDir,
		HeaderPatterns: c.Paths.Headers,
		IgnorePatterns: c.Paths.Ignore,
		CacheSize:      c.Index.CacheSize,
		Debounce:       time.Duration(c.Index.DebounceMS) * time.Millisecond,
		Extract:        c.ToExtractorOptions(),
	}
}

// DatabasePath resolves the storage database against rootDir.
// ":memory:" and absolute paths are returned unchanged.
func (c *Config) DatabasePath(rootDir string) string {
	db := c.Storage.Database
	if db == ":memory:" || filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(rootDir, db)
}
