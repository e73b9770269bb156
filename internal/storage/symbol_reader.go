package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// SymbolReader queries stored files, symbols and diagnostics.
type SymbolReader struct {
	db *sql.DB
}

// NewSymbolReader creates a SymbolReader instance.
// DB should have schema already created.
func NewSymbolReader(db *sql.DB) *SymbolReader {
	return &SymbolReader{db: db}
}

var symbolColumns = []string{
	"symbol_id", "file_path", "COALESCE(parent_id, '')", "ordinal", "kind", "name", "qualified_name", "link",
	"access", "member_group", "doc", "signature", "return_type", "type_text", "value_text",
	"definition", "specifiers", "is_scoped", "overload_index", "is_superseded",
	"start_line", "start_col", "end_line", "end_col",
}

// GetFile retrieves one file record.
// Returns (nil, nil) if the file is not stored.
func (r *SymbolReader) GetFile(filePath string) (*FileRecord, error) {
	f := &FileRecord{}
	var indexedAt string

	err := sq.Select("file_path", "file_hash", "run_id", "size_bytes", "indexed_at").
		From("files").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(r.db).
		QueryRow().
		Scan(&f.FilePath, &f.FileHash, &f.RunID, &f.SizeBytes, &indexedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", filePath, err)
	}

	f.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	return f, nil
}

// GetAllFiles retrieves every stored file ordered by path.
func (r *SymbolReader) GetAllFiles() ([]*FileRecord, error) {
	rows, err := sq.Select("file_path", "file_hash", "run_id", "size_bytes", "indexed_at").
		From("files").
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*FileRecord
	for rows.Next() {
		f := &FileRecord{}
		var indexedAt string
		if err := rows.Scan(&f.FilePath, &f.FileHash, &f.RunID, &f.SizeBytes, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetFileSymbols returns every symbol of a file in pre-order.
func (r *SymbolReader) GetFileSymbols(filePath string) ([]*SymbolRecord, error) {
	return r.querySymbols(sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"file_path": filePath}).
		OrderBy("ordinal"))
}

// FindByQualifiedName returns all symbols with the given qualified name,
// which includes every member of an overload set and every redeclaration.
func (r *SymbolReader) FindByQualifiedName(name string) ([]*SymbolRecord, error) {
	return r.querySymbols(sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"qualified_name": name}).
		OrderBy("file_path", "ordinal"))
}

// GetChildren returns the direct members of a stored symbol.
func (r *SymbolReader) GetChildren(symbolID string) ([]*SymbolRecord, error) {
	return r.querySymbols(sq.Select(symbolColumns...).
		From("symbols").
		Where(sq.Eq{"parent_id": symbolID}).
		OrderBy("ordinal"))
}

// CountSymbols returns the number of stored symbols, optionally of one kind.
func (r *SymbolReader) CountSymbols(kind string) (int, error) {
	q := sq.Select("COUNT(*)").From("symbols")
	if kind != "" {
		q = q.Where(sq.Eq{"kind": kind})
	}

	var n int
	if err := q.RunWith(r.db).QueryRow().Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count symbols: %w", err)
	}
	return n, nil
}

// GetDiagnostics returns a file's diagnostics in the order they were found.
func (r *SymbolReader) GetDiagnostics(filePath string) ([]*DiagnosticRecord, error) {
	rows, err := sq.Select("file_path", "line", "col", "severity", "kind", "message", "text", "scope").
		From("diagnostics").
		Where(sq.Eq{"file_path": filePath}).
		OrderBy("position").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics for %s: %w", filePath, err)
	}
	defer rows.Close()

	var diags []*DiagnosticRecord
	for rows.Next() {
		d := &DiagnosticRecord{}
		if err := rows.Scan(&d.FilePath, &d.Line, &d.Col, &d.Severity, &d.Kind, &d.Message, &d.Text, &d.Scope); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}

// GetLatestRun returns the most recently started run.
// Returns (nil, nil) if nothing has been indexed yet.
func (r *SymbolReader) GetLatestRun() (*Run, error) {
	run := &Run{}
	var startedAt string
	var finishedAt sql.NullString

	err := sq.Select("run_id", "started_at", "finished_at", "file_count", "symbol_count", "error_count").
		From("runs").
		OrderBy("started_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(&run.ID, &startedAt, &finishedAt, &run.FileCount, &run.SymbolCount, &run.ErrorCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if finishedAt.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt.String)
	}
	return run, nil
}

// querySymbols scans all rows before loading parameters, since the
// connection pool holds a single connection.
func (r *SymbolReader) querySymbols(q sq.SelectBuilder) ([]*SymbolRecord, error) {
	rows, err := q.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}

	var out []*SymbolRecord
	for rows.Next() {
		s := &SymbolRecord{}
		var doc, specifiers string
		if err := rows.Scan(
			&s.ID, &s.FilePath, &s.ParentID, &s.Ordinal, &s.Kind, &s.Name, &s.QualifiedName, &s.Link,
			&s.Access, &s.Group, &doc, &s.Signature, &s.ReturnType, &s.Type, &s.Value,
			&s.Definition, &specifiers, &s.Scoped, &s.OverloadIndex, &s.Superseded,
			&s.StartLine, &s.StartCol, &s.EndLine, &s.EndCol,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		if doc != "" {
			s.Doc = symbols.DocComment(strings.Split(doc, "\n"))
		}
		s.Specifiers = strings.Fields(specifiers)
		out = append(out, s)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate symbols: %w", err)
	}

	for _, s := range out {
		if err := r.loadParameters(s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SymbolReader) loadParameters(s *SymbolRecord) error {
	rows, err := sq.Select("param_type", "name", "default_value", "is_variadic").
		From("parameters").
		Where(sq.Eq{"symbol_id": s.ID}).
		OrderBy("position").
		RunWith(r.db).
		Query()
	if err != nil {
		return fmt.Errorf("failed to query parameters of %s: %w", s.QualifiedName, err)
	}
	for rows.Next() {
		var p symbols.Param
		if err := rows.Scan(&p.Type, &p.Name, &p.Default, &p.Variadic); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan parameter: %w", err)
		}
		s.Params = append(s.Params, p)
	}
	rows.Close()

	rows, err = sq.Select("kind", "name", "param_type", "default_value", "is_variadic").
		From("template_parameters").
		Where(sq.Eq{"symbol_id": s.ID}).
		OrderBy("position").
		RunWith(r.db).
		Query()
	if err != nil {
		return fmt.Errorf("failed to query template parameters of %s: %w", s.QualifiedName, err)
	}
	defer rows.Close()
	for rows.Next() {
		var tp symbols.TemplateParam
		var kind string
		if err := rows.Scan(&kind, &tp.Name, &tp.Type, &tp.Default, &tp.Variadic); err != nil {
			return fmt.Errorf("failed to scan template parameter: %w", err)
		}
		tp.Kind = templateParamKind(kind)
		s.Template = append(s.Template, tp)
	}
	return rows.Err()
}

func templateParamKind(s string) symbols.TemplateParamKind {
	switch s {
	case symbols.TemplateNonType.String():
		return symbols.TemplateNonType
	case symbols.TemplateTemplate.String():
		return symbols.TemplateTemplate
	}
	return symbols.TemplateType
}
