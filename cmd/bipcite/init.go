package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/bipcite/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new citation library",
	Long: `Initialize a new citation library in the current directory.

Creates:
  .bipcite/
  ├── records.jsonl   # Empty file
  ├── config.yml      # Default preferences
  └── cache/          # Query database (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getRepoRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsLibrary(root) {
		exitWithError(ExitError, "directory already contains a bipcite library")
	}

	if err := os.MkdirAll(config.CachePath(root), 0o755); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.CachePath(root), err)
	}

	f, err := os.Create(config.RecordsPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.RecordsFile, err)
	}
	f.Close()

	if err := config.WriteLibraryConfig(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if err := os.WriteFile(filepath.Join(config.LibraryPath(root), ".gitignore"), []byte(config.CacheDir+"/\n"), 0o644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized bipcite library in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
