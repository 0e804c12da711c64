package main

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/matsen/bipcite/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set preferences",
	Long: `Get or set preferences.

Usage:
  bipcite config                               # Show effective preferences
  bipcite config citation-style                # Get a value
  bipcite config citation-style vancouver      # Set a value in .bipcite/config.yml
  bipcite config custom-style-dir ~/styles
  bipcite config export-replacement-enabled true

The replacement table (export_replacement) is edited directly in
.bipcite/config.yml or ~/.config/bipcite/config.yml:

  export_replacement:
    - from: NeurIPS
      to: Conference on Neural Information Processing Systems (NeurIPS)

Environment variables prefixed with BIPCITE_ override files, e.g.
BIPCITE_CITATION_STYLE=harvard1.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	libRoot := findLibraryRoot()
	prefs := loadPreferences(libRoot)
	settings := prefs.Settings()

	if len(args) == 0 {
		if humanOutput {
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%-28s %v\n", k+":", settings[k])
			}
		} else {
			outputJSON(settings)
		}
		return nil
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		value, ok := settings[key]
		if !ok && !slices.Contains(config.SettableKeys, key) && key != config.KeyReplacementTable {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]any{key: value})
		}
		return nil
	}

	value := args[1]
	if err := config.SetLibraryValue(libRoot, key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "%v (settable: %s)", err, strings.Join(config.SettableKeys, ", "))
		}
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey converts key formats (citation-style, Citation_Style) to preference keys.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
