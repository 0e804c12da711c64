package export

import (
	"github.com/matsen/bipcite/internal/citation"
	"github.com/matsen/bipcite/internal/csl"
	"github.com/matsen/bipcite/internal/style"
)

// Text renders a plain-text bibliography in a citation style.
type Text struct {
	Styles *style.Registry
}

// Render formats items with the style named by key. Built-in styles are
// used directly. Any other key goes through the registry, which falls back
// to APA and reports when the style cannot be loaded.
func (t Text) Render(items []citation.Citation, key string) (string, error) {
	if s, ok := csl.Builtin(key); ok {
		return s.Bibliography(items)
	}

	styles := t.Styles
	if styles == nil {
		styles = style.NewRegistry(nil, "", nil)
	}
	return styles.Lookup(key).Bibliography(items)
}
