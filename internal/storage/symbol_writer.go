package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// SymbolWriter persists extraction results to SQLite.
type SymbolWriter struct {
	db *sql.DB
}

// NewSymbolWriter creates a SymbolWriter instance.
// DB must have schema already created via CreateSchema() or Open().
func NewSymbolWriter(db *sql.DB) *SymbolWriter {
	return &SymbolWriter{db: db}
}

// BeginRun records the start of an indexing pass and returns it.
func (w *SymbolWriter) BeginRun() (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	_, err := sq.Insert("runs").
		Columns("run_id", "started_at").
		Values(run.ID, run.StartedAt.Format(time.RFC3339)).
		RunWith(w.db).
		Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}

	return run, nil
}

// FinishRun stamps the run with its completion time and counters.
func (w *SymbolWriter) FinishRun(run *Run) error {
	run.FinishedAt = time.Now().UTC()

	_, err := sq.Update("runs").
		Set("finished_at", run.FinishedAt.Format(time.RFC3339)).
		Set("file_count", run.FileCount).
		Set("symbol_count", run.SymbolCount).
		Set("error_count", run.ErrorCount).
		Where(sq.Eq{"run_id": run.ID}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}

	return nil
}

// WriteFile replaces everything stored for file with the given tree and
// diagnostics in a single transaction. Returns the number of symbols written.
func (w *SymbolWriter) WriteFile(file *FileRecord, root *symbols.Node, diags []symbols.Diagnostic) (int, error) {
	tx, err := w.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Cascades remove the previous symbols, parameters and diagnostics
	if _, err := sq.Delete("files").Where(sq.Eq{"file_path": file.FilePath}).RunWith(tx).Exec(); err != nil {
		return 0, fmt.Errorf("failed to clear file %s: %w", file.FilePath, err)
	}

	if file.IndexedAt.IsZero() {
		file.IndexedAt = time.Now().UTC()
	}
	_, err = sq.Insert("files").
		Columns("file_path", "file_hash", "run_id", "size_bytes", "indexed_at").
		Values(file.FilePath, file.FileHash, file.RunID, file.SizeBytes, file.IndexedAt.Format(time.RFC3339)).
		RunWith(tx).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to write file %s: %w", file.FilePath, err)
	}

	sw := &symbolTx{tx: tx, file: file.FilePath}
	for _, c := range root.Children {
		if err := sw.insert(c, nil); err != nil {
			return 0, err
		}
	}

	for i, d := range diags {
		_, err := sq.Insert("diagnostics").
			Columns("file_path", "position", "line", "col", "severity", "kind", "message", "text", "scope").
			Values(file.FilePath, i, d.Pos.Line, d.Pos.Col, d.Severity.String(), d.Kind.String(), d.Message, d.Text, d.Scope).
			RunWith(tx).
			Exec()
		if err != nil {
			return 0, fmt.Errorf("failed to write diagnostic for %s: %w", file.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit file %s: %w", file.FilePath, err)
	}

	return sw.ordinal, nil
}

// DeleteFile removes a file and, by cascade, everything extracted from it.
func (w *SymbolWriter) DeleteFile(filePath string) error {
	_, err := sq.Delete("files").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// symbolTx writes one file's tree in pre-order.
type symbolTx struct {
	tx      *sql.Tx
	file    string
	ordinal int
}

func (s *symbolTx) insert(n *symbols.Node, parentID any) error {
	id := uuid.New().String()

	var signature, returnType string
	if n.Signature != nil {
		signature = n.Signature.String(n.Name)
		returnType = n.Signature.Return
	}
	overloadIndex := -1
	if n.Overload != nil {
		overloadIndex = n.Overload.Index(n)
	}

	_, err := sq.Insert("symbols").
		Columns(
			"symbol_id", "file_path", "parent_id", "ordinal", "kind", "name", "qualified_name", "link",
			"access", "member_group", "doc", "signature", "return_type", "type_text", "value_text",
			"definition", "specifiers", "is_scoped", "overload_index", "is_superseded",
			"start_line", "start_col", "end_line", "end_col",
		).
		Values(
			id, s.file, parentID, s.ordinal, n.Kind.String(), n.Name, n.QualifiedName(), n.Link(),
			n.Access.String(), n.Group, n.Doc.Text(), signature, returnType, n.Type, n.Value,
			n.Definition.String(), strings.Join(n.Specifiers, " "), n.Scoped, overloadIndex, n.SupersededBy != nil,
			n.Span.Start.Line, n.Span.Start.Col, n.Span.End.Line, n.Span.End.Col,
		).
		RunWith(s.tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert symbol %s: %w", n.QualifiedName(), err)
	}
	s.ordinal++

	if n.Signature != nil {
		for i, p := range n.Signature.Params {
			_, err := sq.Insert("parameters").
				Columns("symbol_id", "position", "param_type", "name", "default_value", "is_variadic").
				Values(id, i, p.Type, p.Name, p.Default, p.Variadic).
				RunWith(s.tx).
				Exec()
			if err != nil {
				return fmt.Errorf("failed to insert parameter %d of %s: %w", i, n.QualifiedName(), err)
			}
		}
	}

	for i, tp := range n.Template {
		_, err := sq.Insert("template_parameters").
			Columns("symbol_id", "position", "kind", "name", "param_type", "default_value", "is_variadic").
			Values(id, i, tp.Kind.String(), tp.Name, tp.Type, tp.Default, tp.Variadic).
			RunWith(s.tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert template parameter %d of %s: %w", i, n.QualifiedName(), err)
		}
	}

	for _, c := range n.Children {
		if err := s.insert(c, id); err != nil {
			return err
		}
	}

	return nil
}
