package csl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/matsen/bipcite/internal/citation"
)

// Sort orders accepted by TemplateOptions.
const (
	SortNone   = "none"
	SortAuthor = "author"
)

// TemplateOptions configures a user style.
type TemplateOptions struct {
	Layout string // text/template source executed once per entry
	Sort   string // "", "none" or "author"
	Prefix string // written before each entry
	Suffix string // written after each entry
}

// Entry is the value a layout is executed against.
type Entry struct {
	citation.Citation
	Number int // 1-based position in the bibliography
}

// Template is a user-supplied style compiled from a layout.
type Template struct {
	key          string
	layout       *template.Template
	sortByAuthor bool
	prefix       string
	suffix       string
}

// layoutFuncs are available inside layouts.
var layoutFuncs = template.FuncMap{
	"apaNames":       apaNames,
	"harvardNames":   harvardNames,
	"vancouverNames": vancouverNames,
	"initials": func(given string) string {
		return dotted(given, " ")
	},
	"join":      strings.Join,
	"upper":     strings.ToUpper,
	"lower":     strings.ToLower,
	"terminate": terminate,
	"doiURL":    doiURL,
	"volumeIssue": func(e Entry) string {
		return volumeIssue(e.Citation)
	},
	"default": func(fallback, s string) string {
		if s == "" {
			return fallback
		}
		return s
	},
}

// NewTemplate compiles a user style.
func NewTemplate(key string, opts TemplateOptions) (*Template, error) {
	if strings.TrimSpace(opts.Layout) == "" {
		return nil, fmt.Errorf("style %s: empty layout", key)
	}

	t := &Template{key: key, prefix: opts.Prefix, suffix: opts.Suffix}
	switch opts.Sort {
	case "", SortNone:
	case SortAuthor:
		t.sortByAuthor = true
	default:
		return nil, fmt.Errorf("style %s: unknown sort %q (valid: %s, %s)", key, opts.Sort, SortNone, SortAuthor)
	}

	layout, err := template.New(key).Funcs(layoutFuncs).Option("missingkey=error").Parse(opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("style %s: parsing layout: %w", key, err)
	}
	t.layout = layout
	return t, nil
}

// Key implements Style.
func (t *Template) Key() string { return t.key }

// Bibliography implements Style.
func (t *Template) Bibliography(items []citation.Citation) (string, error) {
	if t.sortByAuthor {
		items = sortedByAuthor(items)
	}

	var b bytes.Buffer
	for i, c := range items {
		b.WriteString(t.prefix)
		if err := t.layout.Execute(&b, Entry{Citation: c, Number: i + 1}); err != nil {
			return "", fmt.Errorf("style %s: rendering %s: %w", t.key, c.ID, err)
		}
		b.WriteString(t.suffix)
		b.WriteString("\n")
	}
	return b.String(), nil
}
