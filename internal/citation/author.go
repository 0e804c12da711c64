package citation

import "strings"

// ParseAuthors splits a free-text author list into names.
//
// The delimiter is ";" when the string contains one anywhere, "," otherwise.
// Within each author the last space-separated piece is the family name and
// everything before it is the given name. Malformed input never fails; it
// just produces odd names.
func ParseAuthors(s string) []Name {
	if strings.TrimSpace(s) == "" {
		return []Name{}
	}

	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}

	var names []Name
	for _, token := range strings.Split(s, sep) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue // trailing or doubled delimiter
		}
		names = append(names, parseName(token))
	}
	if names == nil {
		return []Name{}
	}
	return names
}

// parseName splits a single author on its last space.
func parseName(token string) Name {
	parts := strings.Split(token, " ")
	return Name{
		Given:  strings.Join(parts[:len(parts)-1], " "),
		Family: parts[len(parts)-1],
	}
}
