package main

import (
	"fmt"
	"os"

	"github.com/matsen/bipcite/internal/config"
	"github.com/matsen/bipcite/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query database from the records file",
	Long: `Rebuild the SQLite query database from records.jsonl.

Use this after pulling changes from git or editing records.jsonl by hand.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	libRoot := findLibraryRoot()

	if err := os.MkdirAll(config.CachePath(libRoot), 0o755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(libRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.RecordsPath(libRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d records\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Records: count})
	}
	return nil
}
