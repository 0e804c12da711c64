// Package export renders citations into BibTeX, key lists and styled
// bibliographies, and delivers the result to a sink.
package export

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/matsen/bipcite/internal/citation"
	"github.com/matsen/bipcite/internal/csl"
)

// mathSpan matches inline math, shortest match first. Spans may cross lines.
var mathSpan = regexp.MustCompile(`(?s)\$.*?\$`)

const placeholderPrefix = "BIPMATH"

// BibTeX renders citations as BibTeX.
type BibTeX struct{}

// Keys returns the citation keys joined with ", ". Keys are not escaped.
func (BibTeX) Keys(items []citation.Citation) string {
	keys := make([]string, len(items))
	for i, c := range items {
		keys[i] = c.CitationKey
	}
	return strings.Join(keys, ", ")
}

// Body returns BibTeX entries for items. Inline math in titles is passed
// through byte for byte; &, % and # elsewhere are backslash-escaped.
func (BibTeX) Body(items []citation.Citation) string {
	if len(items) == 0 {
		return ""
	}

	nonce := newNonce()
	protected, spans := protectMath(items, nonce)
	body := escapeSpecials(csl.BibTeX(protected))
	return restoreMath(body, nonce, spans)
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// placeholder is BIPMATH<nonce>N<i>E. The terminator keeps N1E from being
// a prefix of N10E.
func placeholder(nonce string, i int) string {
	return placeholderPrefix + nonce + "N" + strconv.Itoa(i) + "E"
}

// protectMath returns copies of items whose title math spans are replaced
// by placeholders, and the spans indexed by placeholder position.
func protectMath(items []citation.Citation, nonce string) ([]citation.Citation, []string) {
	out := make([]citation.Citation, len(items))
	var spans []string
	for i, c := range items {
		c.Title = mathSpan.ReplaceAllStringFunc(c.Title, func(m string) string {
			spans = append(spans, m)
			return placeholder(nonce, len(spans)-1)
		})
		out[i] = c
	}
	return out, spans
}

func restoreMath(body, nonce string, spans []string) string {
	if len(spans) == 0 {
		return body
	}
	pairs := make([]string, 0, 2*len(spans))
	for i, s := range spans {
		pairs = append(pairs, placeholder(nonce, i), s)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

// escapeSpecials backslash-escapes &, % and # unless already escaped.
func escapeSpecials(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&', '%', '#':
			if i == 0 || s[i-1] != '\\' {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}
