package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cppdoc/internal/extractor/comments"
	"github.com/mvp-joe/cppdoc/internal/extractor/symbols"
	"github.com/mvp-joe/cppdoc/internal/storage"
)

// AddSymbolTool registers the cppdoc_symbol tool with an MCP server.
func AddSymbolTool(s *server.MCPServer, reader *storage.SymbolReader) {
	tool := mcp.NewTool(
		"cppdoc_symbol",
		mcp.WithDescription("Look up a C++ declaration by its fully qualified name and return its kind, signature, template parameters and documentation as Markdown. Every overload is returned."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Qualified name joined with '::' (e.g., 'geo::Point', 'util::round')")),
		mcp.WithBoolean("include_children",
			mcp.Description("List the direct members of namespaces, classes and enums (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSymbolHandler(reader))
}

func createSymbolHandler(reader *storage.SymbolReader) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SymbolRequest
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		name := strings.TrimPrefix(strings.TrimSpace(args.Name), "::")
		if name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		records, err := reader.FindByQualifiedName(name)
		if err != nil {
			return nil, fmt.Errorf("symbol lookup failed: %w", err)
		}
		if len(records) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no symbol named %s", name)), nil
		}

		response := &SymbolResponse{Name: name}
		for _, rec := range records {
			if rec.Superseded {
				continue
			}
			info := symbolInfo(rec)
			if args.IncludeChildren {
				children, err := reader.GetChildren(rec.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to load members of %s: %w", name, err)
				}
				for _, c := range children {
					info.Children = append(info.Children, &SymbolMember{
						Name:    c.Name,
						Kind:    c.Kind,
						Summary: c.Doc.Summary(),
					})
				}
			}
			response.Symbols = append(response.Symbols, info)
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func symbolInfo(rec *storage.SymbolRecord) *SymbolInfo {
	info := &SymbolInfo{
		QualifiedName: rec.QualifiedName,
		Kind:          rec.Kind,
		File:          rec.FilePath,
		Line:          rec.StartLine,
		Access:        rec.Access,
		Signature:     rec.Signature,
		Type:          rec.Type,
		Value:         rec.Value,
		Documentation: comments.Markdown(rec.Doc),
	}
	if rec.Definition != "declared" {
		info.Definition = rec.Definition
	}
	if rec.OverloadIndex >= 0 {
		idx := rec.OverloadIndex
		info.OverloadIndex = &idx
	}
	for _, p := range rec.Template {
		info.Template = append(info.Template, templateText(p))
	}
	return info
}

// templateText renders one template parameter the way it is written.
func templateText(p symbols.TemplateParam) string {
	var b strings.Builder
	b.WriteString(p.Type)
	if p.Variadic {
		b.WriteString("...")
	}
	if p.Name != "" {
		b.WriteString(" " + p.Name)
	}
	if p.Default != "" {
		b.WriteString(" = " + p.Default)
	}
	return b.String()
}
