// Package venue rewrites publication names before export using the
// user's replacement table.
package venue

import (
	"github.com/matsen/bipcite/internal/config"
	"github.com/matsen/bipcite/internal/logging"
	"github.com/matsen/bipcite/internal/reference"
)

// Source supplies the replacement table. *config.Preferences implements it.
type Source interface {
	Replacement() (config.ReplacementConfig, error)
}

// Rewriter replaces publication names on exact match.
type Rewriter struct {
	source   Source
	reporter logging.Reporter
}

// NewRewriter returns a Rewriter reading its table from source.
func NewRewriter(source Source, reporter logging.Reporter) *Rewriter {
	if reporter == nil {
		reporter = logging.Nop()
	}
	return &Rewriter{source: source, reporter: reporter}
}

// Rewrite returns a copy of r with its publication replaced when the table
// has an exact match. If the table cannot be read, the copy is returned
// with the original publication and the failure is reported.
func (w *Rewriter) Rewrite(r reference.Record) reference.Record {
	out, err := w.rewrite(r)
	if err != nil {
		w.reporter.Report("Failed to replace publication name", err, false, "venue")
		return r.Clone()
	}
	return out
}

func (w *Rewriter) rewrite(r reference.Record) (reference.Record, error) {
	out := r.Clone()
	if w.source == nil {
		return out, nil
	}

	cfg, err := w.source.Replacement()
	if err != nil {
		return reference.Record{}, err
	}
	if !cfg.Enabled {
		return out, nil
	}

	if to, ok := Lookup(cfg.Pairs, out.Publication); ok {
		out.Publication = to
	}
	return out, nil
}

// Lookup returns the replacement for name. The first pair whose From equals
// name exactly wins.
func Lookup(pairs []config.Replacement, name string) (string, bool) {
	for _, p := range pairs {
		if p.From == name {
			return p.To, true
		}
	}
	return "", false
}
