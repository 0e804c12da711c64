package citation

import "github.com/matsen/bipcite/internal/reference"

// typeForPubType maps a record publication code to a citation type.
func typeForPubType(code int) Type {
	switch code {
	case reference.PubTypeConference:
		return TypeConferencePaper
	case reference.PubTypeBook:
		return TypeBook
	default:
		return TypeArticle
	}
}

// FromRecord converts a library record into its canonical citation.
func FromRecord(r reference.Record) Citation {
	authors := ParseAuthors(r.Authors)

	c := Citation{
		ID:             r.ID,
		Type:           typeForPubType(r.PubType),
		CitationKey:    DeriveKey(authors, r.Year, r.Title),
		Title:          r.Title,
		Author:         authors,
		ContainerTitle: r.Publication,
		Publisher:      r.Publisher,
		Page:           r.Pages,
		Volume:         r.Volume,
		Issue:          r.Number,
		DOI:            r.DOI,
	}
	if r.Year != "" {
		c.Issued = Date{DateParts: [][]string{{r.Year}}}
	}
	return c
}

// FromRecords converts records in order. The result has the same length as the input.
func FromRecords(records []reference.Record) []Citation {
	out := make([]Citation, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}
