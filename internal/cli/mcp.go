package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cppdoc/internal/indexer"
	"github.com/mvp-joe/cppdoc/internal/mcp"
	"github.com/mvp-joe/cppdoc/internal/storage"
)

var mcpWatch bool

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve header documentation to agents over MCP (stdio)",
	Long: `Start an MCP server on stdio exposing two tools:

  cppdoc_search   search declarations by name, signature and documentation
  cppdoc_symbol   look up a declaration by qualified name

The project is indexed before serving. With --watch the index follows header
changes while the server runs.

Logs go to stderr; stdout carries the MCP protocol.
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVarP(&mcpWatch, "watch", "w", true, "Reindex when headers change")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := openProject(indexer.NoOpProgressReporter{})
	if err != nil {
		return err
	}
	defer p.Close()

	stats, err := p.indexer.Index(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	log.Printf("Indexed %d symbols from %d headers", stats.Symbols, stats.FilesDiscovered)

	server := mcp.NewServer(mcp.ServerConfig{Version: Version, Watch: mcpWatch}, p.indexer, p.search, storage.NewSymbolReader(p.db))
	return server.Serve(ctx)
}
