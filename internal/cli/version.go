package cli

import (
	"fmt"

	"github.com/mvp-joe/cppdoc/internal/storage"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cppdoc build and index schema versions",
	Long: `Print the cppdoc build information and the schema version that
"cppdoc index" writes to the symbol database (.cppdoc/symbols.db by
default). Compare it with the schema_version row of an existing database
when sharing indexes between builds.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cppdoc %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		fmt.Fprintf(out, "Index schema: %s\n", storage.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
