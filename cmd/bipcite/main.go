// Package main provides the bipcite CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// verbose switches the logger to debug-level console output
	verbose bool
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bipcite",
	Short: "Citation export for a local reference library",
	Long: `bipcite turns the records of a local reference library into BibTeX
entries, BibTeX key lists and styled plain-text bibliographies.

Records live in git-versionable JSONL with an ephemeral SQLite database
for queries. Commands output JSON by default for easy integration with
agents and scripts; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		syncLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.Version = Version
}

// getRepoRoot returns the directory to start library discovery from.
func getRepoRoot() (string, int) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}

	if root := os.Getenv("BIPCITE_ROOT"); root != "" {
		cwd = root
	}

	return cwd, 0
}
