package csl

import (
	"fmt"
	"strings"

	"github.com/matsen/bipcite/internal/citation"
)

// BibTeX converts citations to BibTeX entries separated by blank lines.
//
// Field values get generic LaTeX escaping for $, _, ~ and ^. The characters
// &, % and # are left alone; callers escape them over the finished text.
func BibTeX(items []citation.Citation) string {
	entries := make([]string, 0, len(items))
	for _, c := range items {
		entries = append(entries, bibtexEntry(c))
	}
	return strings.Join(entries, "\n")
}

func bibtexEntry(c citation.Citation) string {
	entryType := bibtexType(c.Type)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, c.Key()))

	if len(c.Author) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(c.Author)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(c.Title)))

	if c.ContainerTitle != "" {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", containerField(entryType), escapeLatex(c.ContainerTitle)))
	}

	if year := c.Year(); year != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", year))
	}
	if c.Volume != "" {
		b.WriteString(fmt.Sprintf("  volume = {%s},\n", c.Volume))
	}
	if c.Issue != "" {
		b.WriteString(fmt.Sprintf("  number = {%s},\n", c.Issue))
	}
	if c.Page != "" {
		b.WriteString(fmt.Sprintf("  pages = {%s},\n", formatPages(c.Page)))
	}
	if c.Publisher != "" {
		b.WriteString(fmt.Sprintf("  publisher = {%s},\n", escapeLatex(c.Publisher)))
	}
	if c.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", c.DOI))
	}

	b.WriteString("}\n")

	return b.String()
}

// bibtexType returns the BibTeX entry type for a citation type.
func bibtexType(t citation.Type) string {
	switch t {
	case citation.TypeConferencePaper:
		return "inproceedings"
	case citation.TypeBook:
		return "book"
	default:
		return "article"
	}
}

// containerField names the field holding the container title.
func containerField(entryType string) string {
	switch entryType {
	case "inproceedings":
		return "booktitle"
	case "book":
		return "series"
	default:
		return "journal"
	}
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []citation.Name) string {
	var formatted []string
	for _, a := range authors {
		if a.Given != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", a.Family, a.Given))
		} else {
			formatted = append(formatted, a.Family)
		}
	}
	return strings.Join(formatted, " and ")
}

// formatPages writes page ranges with a double dash: "1-10" and "1–10" become "1--10".
func formatPages(pages string) string {
	pages = strings.ReplaceAll(pages, "–", "-")
	pages = strings.ReplaceAll(pages, "--", "-")
	return strings.ReplaceAll(pages, "-", "--")
}

var latexEscaper = strings.NewReplacer(
	"$", `\$`,
	"_", `\_`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes the LaTeX characters that BibTeX itself does not handle.
func escapeLatex(s string) string {
	return latexEscaper.Replace(s)
}
