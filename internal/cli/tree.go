package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cppdoc/internal/graph"
	"github.com/mvp-joe/cppdoc/internal/indexer"
)

var treeDepth int

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [qualified-name]",
	Short: "Print the merged declaration tree of the project",
	Long: `Tree brings the index up to date and prints every declaration of the
project as one tree. Namespaces reopened in several headers are shown once.

Examples:
  cppdoc tree
  cppdoc tree geo --depth 1
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "Maximum depth to print (0 for all)")
}

func runTree(cmd *cobra.Command, args []string) error {
	p, err := openProject(indexer.NoOpProgressReporter{})
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.indexer.Index(context.Background()); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	g, err := graph.Build(p.indexer.Results())
	if err != nil {
		return err
	}

	start := []string{graph.RootID}
	if len(args) == 1 {
		name := strings.TrimPrefix(args[0], "::")
		found, err := g.Find(name)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no symbol named %s", name)
		}
		start = start[:0]
		for _, v := range found {
			start = append(start, v.ID)
		}
	}

	out := cmd.OutOrStdout()
	for _, id := range start {
		err := g.Walk(id, func(v *graph.Vertex, depth int) bool {
			if v.ID == graph.RootID {
				return true
			}
			indent := depth
			if id == graph.RootID {
				indent--
			}
			fmt.Fprintf(out, "%s%s%s\n", strings.Repeat("  ", indent), describe(v.Decls[0].Node), locations(v))
			return treeDepth == 0 || indent+1 < treeDepth
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// locations lists the headers a vertex was declared in.
func locations(v *graph.Vertex) string {
	files := make([]string, 0, len(v.Decls))
	for _, d := range v.Decls {
		files = append(files, fmt.Sprintf("%s:%d", d.File, d.Node.Span.Start.Line))
	}
	return "  (" + strings.Join(files, ", ") + ")"
}
