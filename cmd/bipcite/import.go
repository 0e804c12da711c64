package main

import (
	"fmt"
	"os"

	"github.com/matsen/bipcite/internal/config"
	"github.com/matsen/bipcite/internal/reference"
	"github.com/matsen/bipcite/internal/storage"
	"github.com/spf13/cobra"
)

var importDryRun bool

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <records.jsonl>",
	Short: "Merge records from a JSONL file into the library",
	Long: `Merge records from a JSONL file into the library.

A record whose DOI matches an existing record replaces it; otherwise a
record whose ID matches replaces it; anything else is added.

Usage:
  bipcite import export.jsonl
  bipcite import export.jsonl --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// DryRunResult represents the result of a dry-run import.
type DryRunResult struct {
	WouldImport int            `json:"would_import"`
	WouldUpdate int            `json:"would_update"`
	Details     []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	ID     string `json:"id"`
	Action string `json:"action"` // import, update
	Reason string `json:"reason,omitempty"`
	Title  string `json:"title"`
}

type importAction struct {
	action      string // import, update
	reason      string // doi_match, id_match
	existingIdx int
}

// recordWithAction pairs an incoming record with its classification.
type recordWithAction struct {
	rec reference.Record
	importAction
}

func runImport(cmd *cobra.Command, args []string) error {
	libRoot := findLibraryRoot()

	incoming, err := storage.ReadAll(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}

	recordsPath := config.RecordsPath(libRoot)
	existing, err := storage.ReadAll(recordsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading library: %v", err)
	}

	actions := make([]recordWithAction, 0, len(incoming))
	var imported, updated int
	for _, rec := range incoming {
		a := classifyImport(existing, rec)
		actions = append(actions, recordWithAction{rec: rec, importAction: a})
		if a.action == "update" {
			updated++
		} else {
			imported++
		}
	}

	if importDryRun {
		result := DryRunResult{WouldImport: imported, WouldUpdate: updated}
		for _, a := range actions {
			result.Details = append(result.Details, ImportDetail{
				ID: a.rec.ID, Action: a.action, Reason: a.reason, Title: a.rec.Title,
			})
		}
		if humanOutput {
			fmt.Printf("Would import %d, update %d\n", imported, updated)
			for _, d := range result.Details {
				fmt.Printf("  %-7s %-20s %s\n", d.Action, d.ID, truncateString(d.Title, TextWrapWidth))
			}
		} else {
			outputJSON(result)
		}
		return nil
	}

	if err := storage.WriteAll(recordsPath, applyImports(existing, actions)); err != nil {
		exitWithError(ExitError, "writing library: %v", err)
	}

	if err := os.MkdirAll(config.CachePath(libRoot), 0o755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(libRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()
	if _, err := db.RebuildFromJSONL(recordsPath); err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %d, updated %d\n", imported, updated)
	} else {
		outputJSON(ImportResult{Imported: imported, Updated: updated})
	}
	return nil
}

// classifyImport matches an incoming record against the library, DOI first.
func classifyImport(existing []reference.Record, rec reference.Record) importAction {
	if idx, found := storage.FindByDOI(existing, rec.DOI); found {
		return importAction{action: "update", reason: "doi_match", existingIdx: idx}
	}
	if idx, found := storage.FindByID(existing, rec.ID); found {
		return importAction{action: "update", reason: "id_match", existingIdx: idx}
	}
	return importAction{action: "import"}
}

// applyImports returns the library with updates applied in place and new
// records appended in input order.
func applyImports(existing []reference.Record, actions []recordWithAction) []reference.Record {
	out := reference.CloneAll(existing)
	for _, a := range actions {
		if a.action == "update" {
			out[a.existingIdx] = a.rec
		}
	}
	for _, a := range actions {
		if a.action == "import" {
			out = append(out, a.rec)
		}
	}
	return out
}
