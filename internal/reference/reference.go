// Package reference defines the bibliographic record consumed by the citation engine.
package reference

import "slices"

// Publication type codes stored in Record.PubType.
const (
	PubTypeJournal    = 0
	PubTypeConference = 1
	PubTypeOther      = 2
	PubTypeBook       = 3
)

// Record represents one entry of the bibliographic library.
//
// Records are owned by the caller. The export pipeline works on clones and
// never writes back to the original.
type Record struct {
	// Identity
	ID  string `json:"id"`
	DOI string `json:"doi,omitempty"`

	// Metadata
	Authors     string `json:"authors"`               // Free text, "Jane Doe, John Smith" or "Jane Doe; John Smith"
	Title       string `json:"title"`                 // May contain inline math such as $O(n)$
	Publication string `json:"publication,omitempty"` // Journal, conference or book series
	Publisher   string `json:"publisher,omitempty"`
	Year        string `json:"year,omitempty"` // Kept verbatim, never parsed

	// Location within the venue
	Pages  string `json:"pages,omitempty"`
	Volume string `json:"volume,omitempty"`
	Number string `json:"number,omitempty"` // Issue number

	PubType int      `json:"pub_type"`
	Codes   []string `json:"codes,omitempty"` // Associated artifact codes (code repositories)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	c.Codes = slices.Clone(r.Codes)
	return c
}

// CloneAll returns deep copies of all records, preserving order.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
