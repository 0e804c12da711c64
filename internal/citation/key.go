package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minKeyWordLen is the length a title word must exceed to be used in a key.
const minKeyWordLen = 3

// DeriveKey builds the citation key for an entry: the lowercased family name
// of the first author, the year as given, and the first significant title
// word, concatenated without separators. For example
// "Ren", "2020", "Balanced Meta-Softmax for ..." gives "ren2020balanced".
//
// The result is not checked for BibTeX key legality.
func DeriveKey(authors []Name, year, title string) string {
	var b strings.Builder
	if len(authors) > 0 {
		b.WriteString(strings.ToLower(authors[0].Family))
	}
	b.WriteString(year)

	for _, word := range strings.Fields(title) {
		if w := normalizeKeyWord(word); isSignificantWord(w) {
			b.WriteString(w)
			break
		}
	}
	return b.String()
}

// isSignificantWord reports whether a normalized title word may contribute to
// a key. A word qualifies only if it is none of the articles AND is long enough.
func isSignificantWord(word string) bool {
	lower := strings.ToLower(word)
	return lower != "the" &&
		lower != "a" &&
		lower != "an" &&
		utf8.RuneCountInString(word) > minKeyWordLen
}

// normalizeKeyWord lowercases a word and drops everything that is not a letter or digit.
func normalizeKeyWord(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)
}
