package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cppdoc/internal/indexer"
)

var (
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the project's headers into the symbol database",
	Long: `Index discovers the project's headers, extracts their declarations and
stores them in the SQLite symbol database (.cppdoc/symbols.db by default).

Headers whose content hash is unchanged since the last run are skipped, and
headers that no longer exist are removed.

Examples:
  # Index the current directory
  cppdoc index

  # Watch for changes and reindex
  cppdoc index --watch

  # Index another project quietly
  cppdoc index -C /path/to/project --quiet
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for header changes and reindex")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nInterrupted! Cancelling indexing...")
			cancel()
		case <-ctx.Done():
		}
	}()

	p, err := openProject(NewCLIProgressReporter(quietFlag))
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.indexer.Index(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	if !watchFlag {
		return nil
	}

	if !quietFlag {
		log.Println("Starting watch mode...")
	}
	err = p.indexer.Watch(ctx, func(stats *indexer.Stats, err error) {
		if err != nil {
			log.Printf("Reindex failed: %v", err)
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	if !quietFlag {
		log.Println("Watch mode stopped")
	}
	return nil
}
