package export

import (
	"fmt"
	"strings"
)

// Format selects the renderer used by an export.
type Format int

const (
	// BibTeXBody renders full BibTeX entries.
	BibTeXBody Format = iota
	// BibTeXKey renders the citation keys as a comma-separated list.
	BibTeXKey
	// PlainText renders a bibliography in the selected citation style.
	PlainText
)

// String returns the CLI name of the format.
func (f Format) String() string {
	switch f {
	case BibTeXBody:
		return "bibtex"
	case BibTeXKey:
		return "bibtex-key"
	case PlainText:
		return "text"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a CLI format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bibtex", "bib":
		return BibTeXBody, nil
	case "bibtex-key", "keys":
		return BibTeXKey, nil
	case "text", "plain":
		return PlainText, nil
	default:
		return 0, fmt.Errorf("unknown export format %q (want bibtex, bibtex-key or text)", s)
	}
}
