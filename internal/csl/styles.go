package csl

import (
	"strconv"
	"strings"

	"github.com/matsen/bipcite/internal/citation"
)

// noDate stands in for a missing year in author-date styles.
const noDate = "n.d."

// terminate ends s with a period unless it already ends with punctuation.
func terminate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch s[len(s)-1] {
	case '.', '?', '!':
		return s
	}
	return s + "."
}

func doiURL(doi string) string {
	if doi == "" {
		return ""
	}
	return "https://doi.org/" + doi
}

// volumeIssue formats "12(3)", "12" or "(3)".
func volumeIssue(c citation.Citation) string {
	s := c.Volume
	if c.Issue != "" {
		s += "(" + c.Issue + ")"
	}
	return s
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// apaEntry renders
// "Doe, J., & Smith, J. A. (2020). Title. Journal, 12(3), 1-10. https://doi.org/..."
func apaEntry(_ int, c citation.Citation) string {
	year := c.Year()
	if year == "" {
		year = noDate
	}
	date := "(" + year + ")."

	var segs []string
	if names := apaNames(c.Author); names != "" {
		segs = append(segs, names+" "+date, terminate(c.Title))
	} else {
		segs = append(segs, terminate(c.Title), date)
	}

	switch c.Type {
	case citation.TypeBook:
		segs = append(segs, terminate(c.Publisher))
	case citation.TypeConferencePaper:
		if c.ContainerTitle != "" {
			in := "In " + c.ContainerTitle
			if c.Page != "" {
				in += " (pp. " + c.Page + ")"
			}
			segs = append(segs, terminate(in))
		}
		segs = append(segs, terminate(c.Publisher))
	default:
		segs = append(segs, terminate(joinNonEmpty(", ", c.ContainerTitle, volumeIssue(c), c.Page)))
	}

	segs = append(segs, doiURL(c.DOI))
	return joinNonEmpty(" ", segs...)
}

// vancouverEntry renders
// "1. Doe J, Smith JA. Title. Journal. 2020;12(3):1-10. doi:..."
func vancouverEntry(n int, c citation.Citation) string {
	segs := []string{strconv.Itoa(n) + "."}
	segs = append(segs, terminate(vancouverNames(c.Author)), terminate(c.Title))

	switch c.Type {
	case citation.TypeBook:
		segs = append(segs, terminate(joinNonEmpty("; ", c.Publisher, c.Year())))
	default:
		container := c.ContainerTitle
		if container != "" && c.Type == citation.TypeConferencePaper {
			container = "In: " + container
		}
		segs = append(segs, terminate(container))

		date := joinNonEmpty(";", c.Year(), volumeIssue(c))
		if c.Page != "" {
			date = joinNonEmpty(":", date, c.Page)
		}
		segs = append(segs, terminate(date))
	}

	if c.DOI != "" {
		segs = append(segs, "doi:"+c.DOI)
	}
	return joinNonEmpty(" ", segs...)
}

// harvardEntry renders
// "Doe, J. & Smith, J.A., 2020. Title. Journal, 12(3), pp.1-10. Available at: https://doi.org/...."
func harvardEntry(_ int, c citation.Citation) string {
	year := c.Year()
	if year == "" {
		year = noDate
	}

	var segs []string
	segs = append(segs, joinNonEmpty(", ", harvardNames(c.Author), year)+".", terminate(c.Title))

	pages := ""
	if c.Page != "" {
		pages = "pp." + c.Page
	}
	switch c.Type {
	case citation.TypeBook:
		segs = append(segs, terminate(c.Publisher))
	case citation.TypeConferencePaper:
		if c.ContainerTitle != "" {
			segs = append(segs, terminate(joinNonEmpty(", ", "In "+c.ContainerTitle, pages)))
		}
		segs = append(segs, terminate(c.Publisher))
	default:
		segs = append(segs, terminate(joinNonEmpty(", ", c.ContainerTitle, volumeIssue(c), pages)))
	}

	if c.DOI != "" {
		segs = append(segs, "Available at: "+doiURL(c.DOI)+".")
	}
	return joinNonEmpty(" ", segs...)
}
