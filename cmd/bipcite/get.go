package main

import (
	"fmt"
	"strings"

	"github.com/matsen/bipcite/internal/citation"
	"github.com/matsen/bipcite/internal/reference"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show the citation for a single record",
	Long: `Show the canonical citation (CSL-JSON) for a record, after publication
name replacement.

Example:
  bipcite get ren2020`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	libRoot := findLibraryRoot()
	prefs := loadPreferences(libRoot)

	db := openLibraryDB(libRoot)
	defer db.Close()

	id := args[0]
	rec, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "getting record: %v", err)
	}
	if rec == nil {
		exitWithError(ExitError, "record not found: %s", id)
	}

	c := newExporter(prefs, nil).Citations([]reference.Record{*rec})[0]

	if humanOutput {
		printCitationDetail(c, rec.Codes)
	} else {
		outputJSON(c)
	}
	return nil
}

func printCitationDetail(c citation.Citation, codes []string) {
	fmt.Println(c.Key())
	fmt.Println(strings.Repeat("═", DetailTitleMaxLen))
	fmt.Println()

	fmt.Printf("Title:    %s\n", wrapText(c.Title, TextWrapWidth, "          "))
	fmt.Println()

	if len(c.Author) > 0 {
		names := make([]string, len(c.Author))
		for i, a := range c.Author {
			names[i] = strings.TrimSpace(a.Given + " " + a.Family)
		}
		fmt.Printf("Authors:  %s\n", wrapText(strings.Join(names, ", "), TextWrapWidth, "          "))
		fmt.Println()
	}

	fmt.Printf("Type:     %s\n", c.Type)
	if c.ContainerTitle != "" {
		fmt.Printf("Venue:    %s\n", c.ContainerTitle)
	}
	if c.Publisher != "" {
		fmt.Printf("Publisher: %s\n", c.Publisher)
	}
	if year := c.Year(); year != "" {
		fmt.Printf("Year:     %s\n", year)
	}
	if c.Volume != "" || c.Issue != "" {
		fmt.Printf("Volume:   %s", c.Volume)
		if c.Issue != "" {
			fmt.Printf(" (%s)", c.Issue)
		}
		fmt.Println()
	}
	if c.Page != "" {
		fmt.Printf("Pages:    %s\n", c.Page)
	}
	if c.DOI != "" {
		fmt.Printf("DOI:      %s\n", c.DOI)
	}

	if len(codes) > 0 {
		fmt.Println()
		fmt.Println("Code:")
		for i, code := range codes {
			fmt.Printf("  [%d] %s\n", i+1, code)
		}
	}
}
