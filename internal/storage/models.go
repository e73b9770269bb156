package storage

import (
	"time"

	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
)

// Run is one indexing pass over a project.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while the run is in progress
	FileCount   int
	SymbolCount int
	ErrorCount  int
}

// FileRecord is the stored state of one header.
type FileRecord struct {
	FilePath  string
	FileHash  string // SHA-256
	RunID     string
	SizeBytes int64
	IndexedAt time.Time
}

// SymbolRecord is one stored declaration. Enum-like fields are kept as the
// strings produced by the symbols package.
type SymbolRecord struct {
	ID            string
	FilePath      string
	ParentID      string // empty for top-level declarations
	Ordinal       int
	Kind          string
	Name          string
	QualifiedName string
	Link          string
	Access        string
	Group         string
	Doc           symbols.DocComment
	Signature     string
	ReturnType    string
	Type          string
	Value         string
	Definition    string
	Specifiers    []string
	Scoped        bool
	OverloadIndex int // -1 when not part of an overload set
	Superseded    bool
	StartLine     int
	StartCol      int
	EndLine       int
	EndCol        int

	Params   []symbols.Param
	Template []symbols.TemplateParam
}

// DiagnosticRecord is one stored diagnostic.
type DiagnosticRecord struct {
	FilePath string
	Line     int
	Col      int
	Severity string
	Kind     string
	Message  string
	Text     string
	Scope    string
}
