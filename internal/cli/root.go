// Package cli implements the cppdoc command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cppdoc",
	Short: "cppdoc - C++ header documentation extractor",
	Long: `cppdoc reads C++ headers and extracts namespaces, classes, functions,
fields, enums, aliases and templates together with their documentation
comments. Results can be printed, stored in a SQLite index, searched, or
served to agents over MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.cppdoc/config.yml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "C", "", "project root (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig lets CPPDOC_CONFIG and CPPDOC_ROOT stand in for the flags.
// The project configuration itself is loaded per command by loadConfig.
func initConfig() {
	viper.SetEnvPrefix("CPPDOC")
	viper.BindEnv("config")
	viper.BindEnv("root")

	cfgFile = viper.GetString("config")
	rootDir = viper.GetString("root")
	verbose = viper.GetBool("verbose")
}
