package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cppdoc/internal/extractor"
)

var (
	extractFormat string
	extractStrict bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <header>...",
	Short: "Extract declarations and documentation from headers",
	Long: `Extract runs the declaration extractor over the given headers and prints
the symbol tree of each one. Nothing is stored.

Diagnostics are printed with the tree and never stop extraction; use --strict
to exit with an error when any header has error diagnostics.

Examples:
  # Print an indented tree
  cppdoc extract include/geo/point.h

  # Print JSON for several headers
  cppdoc extract --format json include/*.h
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "text", "Output format: text or json")
	extractCmd.Flags().BoolVar(&extractStrict, "strict", false, "Fail when a header has error diagnostics")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractFormat != "text" && extractFormat != "json" {
		return fmt.Errorf("unknown format %q (must be text or json)", extractFormat)
	}

	root, err := resolveRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	sources := make([]extractor.Source, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		sources = append(sources, extractor.Source{Name: path, Content: content})
	}

	results, err := extractor.New(cfg.ToExtractorOptions()).ExtractAll(context.Background(), sources)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	if extractFormat == "json" {
		docs := make([]*jsonResult, 0, len(results))
		for _, res := range results {
			docs = append(docs, toJSONResult(res))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	}
	for _, res := range results {
		if extractFormat == "text" {
			printTree(out, res)
		}
		if res.HasErrors() {
			failed++
		}
	}

	if extractStrict && failed > 0 {
		return fmt.Errorf("%d of %d headers have errors", failed, len(results))
	}
	return nil
}
