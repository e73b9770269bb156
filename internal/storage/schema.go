package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is written to metadata when the schema is created.
const SchemaVersion = "1"

// Open opens (creating if needed) the SQLite database at path and ensures the
// schema exists. The pool is limited to one connection so that ":memory:"
// databases and PRAGMA settings are shared by every query.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// CreateSchema creates all tables and indexes for the symbol store.
// Uses a transaction so that schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON for the cascades on
// files and symbols to apply.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"metadata", createMetadataTable},
		{"runs", createRunsTable},
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"parameters", createParametersTable},
		{"template_parameters", createTemplateParametersTable},
		{"diagnostics", createDiagnosticsTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`INSERT INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createMetadataTable = `
CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createRunsTable = `
CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    started_at TEXT NOT NULL,                    -- ISO 8601
    finished_at TEXT,                            -- NULL while the run is in progress
    file_count INTEGER NOT NULL DEFAULT 0,
    symbol_count INTEGER NOT NULL DEFAULT 0,
    error_count INTEGER NOT NULL DEFAULT 0
)
`

const createFilesTable = `
CREATE TABLE files (
    file_path TEXT PRIMARY KEY,                  -- Relative path from the project root
    file_hash TEXT NOT NULL,                     -- SHA-256 for change detection
    run_id TEXT NOT NULL,                        -- Run that last wrote this file
    size_bytes INTEGER NOT NULL DEFAULT 0,
    indexed_at TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id)
)
`

const createSymbolsTable = `
CREATE TABLE symbols (
    symbol_id TEXT PRIMARY KEY,                  -- UUID
    file_path TEXT NOT NULL,
    parent_id TEXT,                              -- NULL for top-level declarations
    ordinal INTEGER NOT NULL,                    -- Pre-order position within the file
    kind TEXT NOT NULL,                          -- namespace, class, method, ...
    name TEXT NOT NULL,
    qualified_name TEXT NOT NULL,
    link TEXT NOT NULL,
    access TEXT NOT NULL DEFAULT '',
    member_group TEXT NOT NULL DEFAULT '',
    doc TEXT NOT NULL DEFAULT '',
    signature TEXT NOT NULL DEFAULT '',          -- Rendered declaration for callables
    return_type TEXT NOT NULL DEFAULT '',
    type_text TEXT NOT NULL DEFAULT '',
    value_text TEXT NOT NULL DEFAULT '',
    definition TEXT NOT NULL DEFAULT 'declared',
    specifiers TEXT NOT NULL DEFAULT '',         -- Space separated
    is_scoped INTEGER NOT NULL DEFAULT 0,        -- Boolean: enum class
    overload_index INTEGER NOT NULL DEFAULT -1,  -- Position in its overload set
    is_superseded INTEGER NOT NULL DEFAULT 0,    -- Boolean: redeclared later in the same scope
    start_line INTEGER NOT NULL,
    start_col INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    end_col INTEGER NOT NULL,
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE,
    FOREIGN KEY (parent_id) REFERENCES symbols(symbol_id) ON DELETE CASCADE
)
`

const createParametersTable = `
CREATE TABLE parameters (
    symbol_id TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- 0-indexed
    param_type TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    default_value TEXT NOT NULL DEFAULT '',
    is_variadic INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (symbol_id, position),
    FOREIGN KEY (symbol_id) REFERENCES symbols(symbol_id) ON DELETE CASCADE
)
`

const createTemplateParametersTable = `
CREATE TABLE template_parameters (
    symbol_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL,                          -- type, non-type, template
    name TEXT NOT NULL DEFAULT '',
    param_type TEXT NOT NULL DEFAULT '',
    default_value TEXT NOT NULL DEFAULT '',
    is_variadic INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (symbol_id, position),
    FOREIGN KEY (symbol_id) REFERENCES symbols(symbol_id) ON DELETE CASCADE
)
`

const createDiagnosticsTable = `
CREATE TABLE diagnostics (
    file_path TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- Order of discovery
    line INTEGER NOT NULL,
    col INTEGER NOT NULL,
    severity TEXT NOT NULL,                      -- error, warning
    kind TEXT NOT NULL,
    message TEXT NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    scope TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (file_path, position),
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

var indexes = []string{
	"CREATE INDEX idx_symbols_file ON symbols(file_path, ordinal)",
	"CREATE INDEX idx_symbols_qualified ON symbols(qualified_name)",
	"CREATE INDEX idx_symbols_parent ON symbols(parent_id)",
	"CREATE INDEX idx_symbols_kind ON symbols(kind)",
}
