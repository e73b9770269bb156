package symbols

import (
	"cmp"
	"fmt"
	"slices"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticKind classifies what went wrong.
type DiagnosticKind int

const (
	LexicalError DiagnosticKind = iota
	SyntaxError
	ScopeMismatchError
	NameCollisionWarning
	DuplicateDeclarationWarning
)

func (k DiagnosticKind) String() string {
	switch k {
	case LexicalError:
		return "lexical"
	case SyntaxError:
		return "syntax"
	case ScopeMismatchError:
		return "scope-mismatch"
	case NameCollisionWarning:
		return "name-collision"
	case DuplicateDeclarationWarning:
		return "duplicate"
	}
	return "unknown"
}

// Severity returns the fixed severity of the kind.
func (k DiagnosticKind) Severity() Severity {
	switch k {
	case NameCollisionWarning, DuplicateDeclarationWarning:
		return SeverityWarning
	}
	return SeverityError
}

// Diagnostic is a non-fatal problem found while extracting a source unit.
type Diagnostic struct {
	Pos      Position
	Severity Severity
	Kind     DiagnosticKind
	Message  string
	Text     string
	Scope    string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Col, d.Severity, d.Message)
	if d.Text != "" {
		s += fmt.Sprintf(" (%q)", d.Text)
	}
	return s
}

// Report accumulates diagnostics in the order they are found.
type Report struct {
	Diagnostics []Diagnostic
}

// Add records a diagnostic of the given kind.
func (r *Report) Add(kind DiagnosticKind, pos Position, text, scope, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Pos:      pos,
		Severity: kind.Severity(),
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Text:     text,
		Scope:    scope,
	})
}

// Sort orders the diagnostics by source offset. Diagnostics at the same
// offset keep the order they were found in.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Diagnostics, func(a, b Diagnostic) int {
		return cmp.Compare(a.Pos.Offset, b.Pos.Offset)
	})
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns how many diagnostics of kind were recorded.
func (r *Report) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
