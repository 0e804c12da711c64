package main

import (
	"fmt"
	"os"

	"github.com/matsen/bipcite/internal/clipboard"
	"github.com/matsen/bipcite/internal/export"
	"github.com/matsen/bipcite/internal/reference"
	"github.com/matsen/bipcite/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportKeys   string
	exportSearch string
	exportLimit  int
	exportStyle  string
	exportStdout bool
	exportAppend string
)

func init() {
	registerExportFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

func registerExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "bibtex", "Output format (bibtex, bibtex-key, text)")
	cmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified record IDs (comma-separated)")
	cmd.Flags().StringVar(&exportSearch, "search", "", "Export records matching a full-text query")
	cmd.Flags().IntVar(&exportLimit, "limit", DefaultSearchLimit, "Maximum records for --search")
	cmd.Flags().StringVar(&exportStyle, "style", "", "Citation style for text output (overrides preferences)")
	cmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write to stdout instead of the clipboard")
	cmd.Flags().StringVar(&exportAppend, "append", "", "Append new BibTeX entries to a .bib file, skipping existing ones")
	cmd.MarkFlagsMutuallyExclusive("keys", "search")
	cmd.MarkFlagsMutuallyExclusive("stdout", "append")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export citations to the clipboard",
	Long: `Export citations as BibTeX, a BibTeX key list or a plain-text bibliography.

Output goes to the system clipboard unless --stdout or --append is given.

Examples:
  bipcite export --keys ren2020,doe2019
  bipcite export --format text --style vancouver --search softmax
  bipcite export --format bibtex-key --keys ren2020
  bipcite export --stdout > refs.bib
  bipcite export --append paper/refs.bib`,
	RunE: runExport,
}

// ExportResult is the response for a clipboard export.
type ExportResult struct {
	Status  string `json:"status"`
	Format  string `json:"format"`
	Style   string `json:"style,omitempty"`
	Records int    `json:"records"`
}

// AppendResult is the response for export --append.
type AppendResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := exportFormatFor(exportFormat, exportAppend)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	libRoot := findLibraryRoot()
	prefs := loadPreferences(libRoot)

	db := openLibraryDB(libRoot)
	defer db.Close()

	records, err := selectRecords(db, exportKeys, exportSearch, exportLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var sink clipboard.Sink = clipboard.System{}
	if exportStdout {
		sink = clipboard.Writer{W: os.Stdout}
	}
	exp := newExporter(prefs, sink)
	if exportStyle != "" {
		exp.SetStyle(exportStyle)
	}

	if exportAppend != "" {
		result, err := appendBibTeX(exp, records, exportAppend)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		if humanOutput {
			fmt.Printf("Added %d entries to %s (%d already present)\n", result.Added, result.Path, result.Skipped)
		} else {
			outputJSON(result)
		}
		return nil
	}

	if !exp.Export(records, format) {
		// The failure was already logged to stderr.
		syncLogger()
		os.Exit(ExitError)
	}
	if exportStdout {
		return nil
	}

	result := ExportResult{Status: "copied", Format: format.String(), Records: len(records)}
	if format == export.PlainText {
		result.Style = exp.StyleKey()
	}
	if humanOutput {
		fmt.Printf("Copied %d record(s) as %s to the clipboard\n", result.Records, result.Format)
	} else {
		outputJSON(result)
	}
	return nil
}

// exportFormatFor parses the --format value and checks it against --append,
// which only accepts BibTeX entries.
func exportFormatFor(name, appendPath string) (export.Format, error) {
	format, err := export.ParseFormat(name)
	if err != nil {
		return 0, err
	}
	if appendPath != "" && format != export.BibTeXBody {
		return 0, fmt.Errorf("--append requires --format bibtex, got %s", format)
	}
	return format, nil
}

// selectRecords returns the records named by keys or matched by query,
// or the whole library when both are empty.
func selectRecords(db *storage.DB, keys, query string, limit int) ([]reference.Record, error) {
	switch {
	case keys != "":
		var records []reference.Record
		for _, id := range splitIDList(keys) {
			rec, err := db.GetByID(id)
			if err != nil {
				return nil, fmt.Errorf("getting record %s: %w", id, err)
			}
			if rec == nil {
				return nil, fmt.Errorf("unknown key: %s", id)
			}
			records = append(records, *rec)
		}
		return records, nil

	case query != "":
		records, err := db.Search(query, limit)
		if err != nil {
			return nil, fmt.Errorf("searching records: %w", err)
		}
		return records, nil

	default:
		records, err := db.ListAll(0)
		if err != nil {
			return nil, fmt.Errorf("listing records: %w", err)
		}
		return records, nil
	}
}

// appendBibTeX appends the entries not already in the .bib file at path.
func appendBibTeX(exp *export.Exporter, records []reference.Record, path string) (AppendResult, error) {
	idx, err := export.ParseBibFile(path)
	if err != nil {
		return AppendResult{}, err
	}

	fresh, skipped := idx.FilterNew(exp.Citations(records))
	if len(fresh) > 0 {
		if err := export.AppendToBibFile(path, export.BibTeX{}.Body(fresh)); err != nil {
			return AppendResult{}, err
		}
	}
	return AppendResult{Status: "appended", Path: path, Added: len(fresh), Skipped: skipped}, nil
}
