// Package csl renders canonical citations into text, playing the part a CSL
// processor plays for a reference manager: BibTeX serialisation and styled
// bibliographies for the built-in styles and user templates.
package csl

import (
	"sort"
	"strings"

	"github.com/matsen/bipcite/internal/citation"
)

// Built-in style keys.
const (
	StyleAPA       = "apa"
	StyleVancouver = "vancouver"
	StyleHarvard   = "harvard1"
)

// Style formats a list of citations as a plain-text bibliography.
type Style interface {
	Key() string
	Bibliography(items []citation.Citation) (string, error)
}

// builtinStyle is a style implemented in Go rather than loaded from a file.
type builtinStyle struct {
	key          string
	sortByAuthor bool
	entry        func(n int, c citation.Citation) string
}

func (s *builtinStyle) Key() string { return s.key }

func (s *builtinStyle) Bibliography(items []citation.Citation) (string, error) {
	if s.sortByAuthor {
		items = sortedByAuthor(items)
	}
	var b strings.Builder
	for i, c := range items {
		b.WriteString(s.entry(i+1, c))
		b.WriteString("\n")
	}
	return b.String(), nil
}

var builtins = []*builtinStyle{
	{key: StyleAPA, sortByAuthor: true, entry: apaEntry},
	{key: StyleVancouver, entry: vancouverEntry},
	{key: StyleHarvard, sortByAuthor: true, entry: harvardEntry},
}

// Builtin returns the built-in style with the given key.
func Builtin(key string) (Style, bool) {
	for _, s := range builtins {
		if s.key == key {
			return s, true
		}
	}
	return nil, false
}

// IsBuiltin reports whether key names a built-in style.
func IsBuiltin(key string) bool {
	_, ok := Builtin(key)
	return ok
}

// BuiltinKeys returns the built-in style keys in display order.
func BuiltinKeys() []string {
	keys := make([]string, len(builtins))
	for i, s := range builtins {
		keys[i] = s.key
	}
	return keys
}

// sortedByAuthor returns a copy of items ordered by first author family
// name, then year, then title. Ties keep their input order.
func sortedByAuthor(items []citation.Citation) []citation.Citation {
	out := make([]citation.Citation, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortKey(out[i]), sortKey(out[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

func sortKey(c citation.Citation) [3]string {
	family := ""
	if len(c.Author) > 0 {
		family = strings.ToLower(c.Author[0].Family)
	}
	return [3]string{family, c.Year(), strings.ToLower(c.Title)}
}
