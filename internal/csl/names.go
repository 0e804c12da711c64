package csl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bipcite/internal/citation"
)

// initials returns the first letter of each given name, uppercased.
// "John A." gives ["J", "A"].
func initials(given string) []string {
	var out []string
	for _, part := range strings.Fields(given) {
		r, _ := utf8.DecodeRuneInString(part)
		if r == utf8.RuneError {
			continue
		}
		out = append(out, string(unicode.ToUpper(r)))
	}
	return out
}

// dotted formats initials as "J. A." (sep " ") or "J.A." (sep "").
func dotted(given, sep string) string {
	ins := initials(given)
	for i := range ins {
		ins[i] += "."
	}
	return strings.Join(ins, sep)
}

// apaName formats "Smith, J. A.".
func apaName(n citation.Name) string {
	if in := dotted(n.Given, " "); in != "" {
		return n.Family + ", " + in
	}
	return n.Family
}

// harvardName formats "Smith, J.A.".
func harvardName(n citation.Name) string {
	if in := dotted(n.Given, ""); in != "" {
		return n.Family + ", " + in
	}
	return n.Family
}

// vancouverName formats "Smith JA".
func vancouverName(n citation.Name) string {
	if in := strings.Join(initials(n.Given), ""); in != "" {
		return n.Family + " " + in
	}
	return n.Family
}

// apaNames joins names as "Doe, J., & Smith, J. A.".
func apaNames(names []citation.Name) string {
	formatted := mapNames(names, apaName)
	switch len(formatted) {
	case 0:
		return ""
	case 1:
		return formatted[0]
	}
	last := len(formatted) - 1
	return strings.Join(formatted[:last], ", ") + ", & " + formatted[last]
}

// harvardNames joins names as "Doe, J., Roe, R. & Smith, J.A.".
func harvardNames(names []citation.Name) string {
	formatted := mapNames(names, harvardName)
	switch len(formatted) {
	case 0:
		return ""
	case 1:
		return formatted[0]
	}
	last := len(formatted) - 1
	return strings.Join(formatted[:last], ", ") + " & " + formatted[last]
}

// maxVancouverAuthors is the number of authors listed before "et al.".
const maxVancouverAuthors = 6

// vancouverNames joins names as "Doe J, Smith JA", truncating long lists.
func vancouverNames(names []citation.Name) string {
	formatted := mapNames(names, vancouverName)
	if len(formatted) > maxVancouverAuthors {
		return strings.Join(formatted[:maxVancouverAuthors], ", ") + ", et al"
	}
	return strings.Join(formatted, ", ")
}

func mapNames(names []citation.Name, f func(citation.Name) string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, f(n))
	}
	return out
}
