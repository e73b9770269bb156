package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/cppdoc/internal/config"
	"github.com/mvp-joe/cppdoc/internal/indexer"
	"github.com/mvp-joe/cppdoc/internal/search"
	"github.com/mvp-joe/cppdoc/internal/storage"
)

// project bundles what the indexing commands share.
type project struct {
	root    string
	cfg     *config.Config
	db      *sql.DB
	search  *search.Index
	indexer indexer.Indexer
}

// resolveRoot returns the absolute project root.
func resolveRoot() (string, error) {
	dir := rootDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

// loadConfig reads the project configuration, honouring --config.
func loadConfig(root string) (*config.Config, error) {
	loader := config.NewLoader(root)
	if cfgFile != "" {
		loader = config.NewFileLoader(root, cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openProject loads configuration, opens storage and creates an indexer
// that keeps an in-memory search index in sync.
func openProject(progress indexer.ProgressReporter) (*project, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DatabasePath(root)
	if verbose {
		fmt.Fprintf(os.Stderr, "Using database: %s\n", dbPath)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	idx, err := search.New()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	ix, err := indexer.New(cfg.ToIndexerConfig(root), db, indexer.WithProgress(progress), indexer.WithSearch(idx))
	if err != nil {
		idx.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}

	return &project{root: root, cfg: cfg, db: db, search: idx, indexer: ix}, nil
}

func (p *project) Close() error {
	p.indexer.Close()
	p.search.Close()
	return p.db.Close()
}
