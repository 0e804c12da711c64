package export

import (
	"fmt"

	"github.com/matsen/bipcite/internal/citation"
	"github.com/matsen/bipcite/internal/clipboard"
	"github.com/matsen/bipcite/internal/config"
	"github.com/matsen/bipcite/internal/logging"
	"github.com/matsen/bipcite/internal/reference"
	"github.com/matsen/bipcite/internal/style"
	"github.com/matsen/bipcite/internal/venue"
)

// failureMessage is reported for every failed export.
const failureMessage = "Failed to export citations"

// StyleSource supplies the selected citation style. *config.Preferences implements it.
type StyleSource interface {
	StyleKey() string
}

// Exporter turns records into formatted output and delivers it to a sink.
type Exporter struct {
	styles   StyleSource
	rewriter *venue.Rewriter
	text     Text
	sink     clipboard.Sink
	reporter logging.Reporter

	styleOverride string
}

// New returns an Exporter. A nil styles source selects the default style;
// a nil rewriter leaves publication names alone.
func New(styles StyleSource, rewriter *venue.Rewriter, registry *style.Registry, sink clipboard.Sink, reporter logging.Reporter) *Exporter {
	if reporter == nil {
		reporter = logging.Nop()
	}
	if rewriter == nil {
		rewriter = venue.NewRewriter(nil, reporter)
	}
	if sink == nil {
		sink = clipboard.System{}
	}
	return &Exporter{
		styles:   styles,
		rewriter: rewriter,
		text:     Text{Styles: registry},
		sink:     sink,
		reporter: reporter,
	}
}

// SetStyle overrides the preference-selected style. An empty key clears the override.
func (e *Exporter) SetStyle(key string) {
	e.styleOverride = key
}

// StyleKey returns the style used for plain-text output.
func (e *Exporter) StyleKey() string {
	if e.styleOverride != "" {
		return e.styleOverride
	}
	if e.styles != nil {
		if key := e.styles.StyleKey(); key != "" {
			return key
		}
	}
	return config.DefaultCitationStyle
}

// Citations copies the records, rewrites their publication names and maps
// them to citations. The input records are not modified.
func (e *Exporter) Citations(records []reference.Record) []citation.Citation {
	drafts := reference.CloneAll(records)
	for i, r := range drafts {
		drafts[i] = e.rewriter.Rewrite(r)
	}
	return citation.FromRecords(drafts)
}

// Render formats records in the given format.
func (e *Exporter) Render(records []reference.Record, format Format) (string, error) {
	items := e.Citations(records)

	switch format {
	case BibTeXBody:
		return BibTeX{}.Body(items), nil
	case BibTeXKey:
		return BibTeX{}.Keys(items), nil
	case PlainText:
		out, err := e.text.Render(items, e.StyleKey())
		if err != nil {
			return "", fmt.Errorf("rendering %s bibliography: %w", e.StyleKey(), err)
		}
		return out, nil
	default:
		return "", fmt.Errorf("unsupported export format %s", format)
	}
}

// Export renders records and copies the result to the sink. Failures,
// including panics while rendering, are reported and nothing is copied.
// The return value reports whether the output reached the sink.
func (e *Exporter) Export(records []reference.Record, format Format) bool {
	out, err := e.safeRender(records, format)
	if err != nil {
		e.reporter.Report(failureMessage, err, true, "export")
		return false
	}
	if err := e.sink.Copy(out); err != nil {
		e.reporter.Report(failureMessage, err, true, "export")
		return false
	}
	return true
}

func (e *Exporter) safeRender(records []reference.Record, format Format) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("panic while rendering %s: %v", format, r)
		}
	}()
	return e.Render(records, format)
}
