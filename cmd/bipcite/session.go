package main

import (
	"errors"
	"os"

	"github.com/matsen/bipcite/internal/clipboard"
	"github.com/matsen/bipcite/internal/config"
	"github.com/matsen/bipcite/internal/export"
	"github.com/matsen/bipcite/internal/logging"
	"github.com/matsen/bipcite/internal/storage"
	"github.com/matsen/bipcite/internal/style"
	"github.com/matsen/bipcite/internal/venue"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var logger *zap.Logger

// getLogger builds the process logger on first use.
func getLogger() *zap.Logger {
	if logger == nil {
		l, err := logging.NewLogger(verbose)
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	}
	return logger
}

func syncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func newReporter() logging.Reporter {
	return logging.NewReporter(getLogger())
}

// findLibraryRoot returns the enclosing library root, or exits.
func findLibraryRoot() string {
	root, exitCode := getRepoRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	libRoot, err := config.FindLibrary(root)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return libRoot
}

// loadPreferences merges global and library preferences, or exits.
func loadPreferences(libRoot string) *config.Preferences {
	prefs, err := config.LoadPreferences(libRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading preferences: %v", err)
	}
	getLogger().Debug("preferences loaded",
		zap.String("library", libRoot),
		zap.String("style", prefs.StyleKey()),
		zap.String("custom_style_dir", prefs.CustomStyleDir()),
	)
	return prefs
}

// openLibraryDB opens the query cache, rebuilding it from the records file
// when it does not exist yet.
func openLibraryDB(libRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(libRoot), 0o755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	dbPath := config.DBPath(libRoot)
	_, statErr := os.Stat(dbPath)

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	if errors.Is(statErr, os.ErrNotExist) {
		n, err := db.RebuildFromJSONL(config.RecordsPath(libRoot))
		if err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding database: %v", err)
		}
		getLogger().Debug("query cache built", zap.Int("records", n))
	}
	return db
}

func newStyleRegistry(prefs *config.Preferences, reporter logging.Reporter) *style.Registry {
	return style.NewRegistry(afero.NewOsFs(), prefs.CustomStyleDir(), reporter)
}

func newExporter(prefs *config.Preferences, sink clipboard.Sink) *export.Exporter {
	reporter := newReporter()
	return export.New(
		prefs,
		venue.NewRewriter(prefs, reporter),
		newStyleRegistry(prefs, reporter),
		sink,
		reporter,
	)
}
