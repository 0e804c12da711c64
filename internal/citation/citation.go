// Package citation defines the canonical citation representation and the
// conversion from library records into it.
//
// The representation follows CSL-JSON closely enough that the JSON encoding of
// a Citation can be handed to any CSL processor.
package citation

// Type is the CSL item type of a citation.
type Type string

// Citation types. The set is closed; unknown publication codes map to TypeArticle.
const (
	TypeArticle         Type = "article"
	TypeConferencePaper Type = "paper-conference"
	TypeBook            Type = "book"
)

// Name is a parsed author name.
type Name struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// Date holds CSL date-parts. Only the year is populated, verbatim from the record.
type Date struct {
	DateParts [][]string `json:"date-parts"`
}

// Citation is the style-agnostic representation of one bibliographic entry.
type Citation struct {
	ID             string `json:"id"`
	Type           Type   `json:"type"`
	CitationKey    string `json:"citation-key"`
	Title          string `json:"title"`
	Author         []Name `json:"author"`
	Issued         Date   `json:"issued"`
	ContainerTitle string `json:"container-title,omitempty"`
	Publisher      string `json:"publisher,omitempty"`
	Page           string `json:"page,omitempty"`
	Volume         string `json:"volume,omitempty"`
	Issue          string `json:"issue,omitempty"`
	DOI            string `json:"DOI,omitempty"`
}

// Year returns the issued year, or "" when the citation has none.
func (c Citation) Year() string {
	if len(c.Issued.DateParts) == 0 || len(c.Issued.DateParts[0]) == 0 {
		return ""
	}
	return c.Issued.DateParts[0][0]
}

// Key returns the citation key, falling back to the ID when no key could be derived.
func (c Citation) Key() string {
	if c.CitationKey != "" {
		return c.CitationKey
	}
	return c.ID
}
