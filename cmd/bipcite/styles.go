package main

import (
	"context"
	"fmt"

	"github.com/matsen/bipcite/internal/style"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(stylesCmd)
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List available citation styles",
	Long: `List the built-in citation styles and the user styles found in the
custom style directory (preference custom_style_dir).

Style files are YAML documents with a .yaml or .yml extension; the file
name without extension is the style key.`,
	Args: cobra.NoArgs,
	RunE: runStyles,
}

// StyleEntry is one row of the styles listing.
type StyleEntry struct {
	style.Descriptor
	Selected bool `json:"selected"`
}

// StylesResult is the response for the styles command.
type StylesResult struct {
	Selected string       `json:"selected"`
	Dir      string       `json:"dir,omitempty"`
	Styles   []StyleEntry `json:"styles"`
	Warning  string       `json:"warning,omitempty"`
}

func runStyles(cmd *cobra.Command, args []string) error {
	libRoot := findLibraryRoot()
	prefs := loadPreferences(libRoot)
	registry := newStyleRegistry(prefs, newReporter())

	result := listStyles(cmd.Context(), registry, prefs.StyleKey())
	if result.Warning != "" {
		getLogger().Warn("listing custom styles", zap.String("warning", result.Warning))
	}

	if !humanOutput {
		outputJSON(result)
		return nil
	}

	for _, s := range result.Styles {
		fmt.Println(styleLine(s))
	}
	if result.Warning != "" {
		fmt.Printf("\nwarning: %s\n", result.Warning)
	}
	return nil
}

// listStyles builds the listing for the styles command. A directory that
// cannot be read becomes a warning; the built-ins are still listed.
func listStyles(ctx context.Context, registry *style.Registry, selected string) StylesResult {
	result := StylesResult{Selected: selected, Dir: registry.Dir()}
	descriptors, err := registry.List(ctx)
	if err != nil {
		result.Warning = err.Error()
	}
	for _, d := range descriptors {
		result.Styles = append(result.Styles, StyleEntry{Descriptor: d, Selected: d.Key == selected})
	}
	return result
}

func styleLine(s StyleEntry) string {
	marker := " "
	if s.Selected {
		marker = "*"
	}
	kind := "custom"
	if s.Builtin {
		kind = "built-in"
	}
	return fmt.Sprintf("%s %-16s %-9s %s", marker, s.Key, kind, truncateString(s.Name, DetailTitleMaxLen))
}
