package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cppdoc/internal/indexer"
	"github.com/mvp-joe/cppdoc/internal/search"
)

var (
	searchKind  string
	searchFile  string
	searchLimit int
	searchJSON  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search declarations by name, signature and documentation",
	Long: `Search brings the index up to date and runs a query over every declaration.
The query uses bleve query string syntax: plain words match names,
signatures and documentation; field:value restricts to one field.

Examples:
  cppdoc search round
  cppdoc search --kind class "name:Point*"
  cppdoc search --file "include/geo/*" distance
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "Only show symbols of this kind")
	searchCmd.Flags().StringVar(&searchFile, "file", "", "Only show symbols from headers matching this wildcard")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 15, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := openProject(indexer.NoOpProgressReporter{})
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.indexer.Index(ctx); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	hits, err := p.search.Search(ctx, strings.Join(args, " "), &search.Options{
		Kind:  searchKind,
		File:  searchFile,
		Limit: searchLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	for _, h := range hits {
		title := h.QualifiedName
		if h.Signature != "" {
			title = h.Signature
		}
		fmt.Fprintf(out, "%s:%d  %s %s\n", h.File, h.Line, h.Kind, title)
		if h.Summary != "" {
			fmt.Fprintf(out, "    %s\n", h.Summary)
		}
	}
	return nil
}
