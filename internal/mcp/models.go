package mcp

import "github.com/mvp-joe/cppdoc/internal/search"

// SearchRequest is the cppdoc_search argument set.
type SearchRequest struct {
	Query string `json:"query"`
	Kind  string `json:"kind"`
	File  string `json:"file"`
	Limit int    `json:"limit"`
}

// SearchResponse is the cppdoc_search result.
type SearchResponse struct {
	Results []*search.Hit `json:"results"`
	Total   int           `json:"total"`
}

// SymbolRequest is the cppdoc_symbol argument set.
type SymbolRequest struct {
	Name            string `json:"name"`
	IncludeChildren bool   `json:"include_children"`
}

// SymbolResponse is the cppdoc_symbol result. Overloads and declarations
// reopened in several headers all appear in Symbols.
type SymbolResponse struct {
	Name    string        `json:"name"`
	Symbols []*SymbolInfo `json:"symbols"`
}

// SymbolInfo describes one stored declaration.
type SymbolInfo struct {
	QualifiedName string          `json:"qualified_name"`
	Kind          string          `json:"kind"`
	File          string          `json:"file"`
	Line          int             `json:"line"`
	Access        string          `json:"access,omitempty"`
	Signature     string          `json:"signature,omitempty"`
	Type          string          `json:"type,omitempty"`
	Value         string          `json:"value,omitempty"`
	Definition    string          `json:"definition,omitempty"`
	OverloadIndex *int            `json:"overload_index,omitempty"`
	Template      []string        `json:"template,omitempty"`
	Documentation string          `json:"documentation,omitempty"`
	Children      []*SymbolMember `json:"children,omitempty"`
}

// SymbolMember is a direct member listed under a scope.
type SymbolMember struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Summary string `json:"summary,omitempty"`
}
