package venue

import (
	"errors"
	"testing"

	"github.com/matsen/bipcite/internal/config"
	"github.com/matsen/bipcite/internal/logging"
	"github.com/matsen/bipcite/internal/reference"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticSource struct {
	cfg config.ReplacementConfig
	err error
}

func (s staticSource) Replacement() (config.ReplacementConfig, error) {
	return s.cfg, s.err
}

const neuripsLong = "Conference on Neural Information Processing Systems (NeurIPS)"

func neuripsTable(enabled bool) staticSource {
	return staticSource{cfg: config.ReplacementConfig{
		Enabled: enabled,
		Pairs:   []config.Replacement{{From: "NeurIPS", To: neuripsLong}},
	}}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name   string
		source staticSource
		venue  string
		want   string
	}{
		{"enabled match", neuripsTable(true), "NeurIPS", neuripsLong},
		{"disabled", neuripsTable(false), "NeurIPS", "NeurIPS"},
		{"no entry", neuripsTable(true), "ICML", "ICML"},
		{"match is exact", neuripsTable(true), "neurips", "neurips"},
		{"no substring match", neuripsTable(true), "NeurIPS 2020", "NeurIPS 2020"},
		{"empty table", staticSource{cfg: config.ReplacementConfig{Enabled: true}}, "NeurIPS", "NeurIPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewRewriter(tt.source, logging.Nop())
			got := w.Rewrite(reference.Record{ID: "r", Publication: tt.venue})
			if got.Publication != tt.want {
				t.Errorf("Rewrite().Publication = %q, want %q", got.Publication, tt.want)
			}
		})
	}
}

func TestRewrite_DoesNotTouchOriginal(t *testing.T) {
	w := NewRewriter(neuripsTable(true), logging.Nop())
	orig := reference.Record{ID: "r", Publication: "NeurIPS", Codes: []string{"c"}}

	got := w.Rewrite(orig)
	got.Codes[0] = "changed"

	if orig.Publication != "NeurIPS" {
		t.Errorf("original Publication = %q, want untouched", orig.Publication)
	}
	if orig.Codes[0] != "c" {
		t.Error("Rewrite() result aliases the original Codes")
	}
}

func TestRewrite_Repeated(t *testing.T) {
	w := NewRewriter(neuripsTable(true), logging.Nop())
	orig := reference.Record{Publication: "NeurIPS"}

	for i := 0; i < 3; i++ {
		if got := w.Rewrite(orig).Publication; got != neuripsLong {
			t.Fatalf("Rewrite() call %d = %q, want %q", i, got, neuripsLong)
		}
	}
}

func TestRewrite_MalformedConfig(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := NewRewriter(staticSource{err: errors.New("expected a map")}, logging.NewReporter(zap.New(core)))

	got := w.Rewrite(reference.Record{ID: "r", Publication: "NeurIPS"})
	if got.Publication != "NeurIPS" {
		t.Errorf("Rewrite().Publication = %q, want unchanged", got.Publication)
	}
	if logs.Len() != 1 {
		t.Fatalf("got %d reports, want 1", logs.Len())
	}
	if src := logs.All()[0].ContextMap()["source"]; src != "venue" {
		t.Errorf("report source = %v, want venue", src)
	}

	if _, err := w.rewrite(reference.Record{}); err == nil {
		t.Error("rewrite() should surface the configuration error")
	}
}

func TestRewrite_NilSource(t *testing.T) {
	w := NewRewriter(nil, nil)
	got := w.Rewrite(reference.Record{Publication: "NeurIPS"})
	if got.Publication != "NeurIPS" {
		t.Errorf("Rewrite().Publication = %q, want unchanged", got.Publication)
	}
}

func TestLookup_FirstMatchWins(t *testing.T) {
	pairs := []config.Replacement{
		{From: "ICML", To: "first"},
		{From: "ICML", To: "second"},
	}
	got, ok := Lookup(pairs, "ICML")
	if !ok || got != "first" {
		t.Errorf("Lookup() = %q, %v; want first, true", got, ok)
	}
	if _, ok := Lookup(pairs, "CVPR"); ok {
		t.Error("Lookup() found a pair for CVPR")
	}
}
