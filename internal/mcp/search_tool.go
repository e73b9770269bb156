package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cppdoc/internal/search"
)

// AddSearchTool registers the cppdoc_search tool with an MCP server.
func AddSearchTool(s *server.MCPServer, idx *search.Index) {
	tool := mcp.NewTool(
		"cppdoc_search",
		mcp.WithDescription("Search the declarations of the project's C++ headers by name, signature and documentation. Returns matching symbols ranked by relevance with their qualified names, files and doc summaries."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (e.g., 'round', 'uppercase conversion', 'name:Point*')")),
		mcp.WithString("kind",
			mcp.Description("Only return symbols of this kind: namespace, class, struct, union, enum, enumerator, constructor, destructor, method, function, field, variable, alias")),
		mcp.WithString("file",
			mcp.Description("Only return symbols from headers matching this wildcard (e.g., 'include/geo/*')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(idx))
}

func createSearchHandler(idx *search.Index) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SearchRequest
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		hits, err := idx.Search(ctx, args.Query, &search.Options{
			Kind:  args.Kind,
			File:  args.File,
			Limit: args.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		jsonData, err := json.Marshal(&SearchResponse{Results: hits, Total: len(hits)})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
