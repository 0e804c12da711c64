package export

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/bipcite/internal/citation"
)

var (
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	doiFieldRegex   = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibIndex indexes the entries of an existing .bib file.
type BibIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewBibIndex creates an empty index.
func NewBibIndex() *BibIndex {
	return &BibIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether the entry already exists. DOI is the primary
// match; the citation key is the fallback when there is no DOI.
func (idx *BibIndex) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[normalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// FilterNew returns the citations not already in the index, and the
// number skipped.
func (idx *BibIndex) FilterNew(items []citation.Citation) ([]citation.Citation, int) {
	var out []citation.Citation
	skipped := 0
	for _, c := range items {
		if idx.HasEntry(c.Key(), c.DOI) {
			skipped++
			continue
		}
		out = append(out, c)
	}
	return out, skipped
}

// ParseBibFile builds an index from an existing .bib file.
// A missing file yields an empty index.
func ParseBibFile(path string) (*BibIndex, error) {
	idx := NewBibIndex()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()

		if m := entryStartRegex.FindStringSubmatch(line); len(m) > 1 {
			currentKey = strings.TrimSpace(m[1])
			idx.Keys[currentKey] = true
		}

		if m := doiFieldRegex.FindStringSubmatch(line); len(m) > 1 {
			if doi := normalizeDOI(m[1]); doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return idx, nil
}

// normalizeDOI strips resolver prefixes and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi.org/", "DOI:", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.ToLower(doi)
}

// AppendToBibFile appends BibTeX content to a file, creating it if needed.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString("\n" + content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
