package csl

import (
	"strings"
	"testing"

	"github.com/matsen/bipcite/internal/citation"
)

func TestTemplate_Bibliography(t *testing.T) {
	tmpl, err := NewTemplate("compact", TemplateOptions{
		Layout: `{{.Number}}. {{apaNames .Author}} {{.Title}} ({{default "n.d." .Year}})`,
		Sort:   SortAuthor,
		Prefix: "- ",
	})
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}
	if tmpl.Key() != "compact" {
		t.Errorf("Key() = %q, want compact", tmpl.Key())
	}

	got, err := tmpl.Bibliography([]citation.Citation{book(), journalArticle()})
	if err != nil {
		t.Fatalf("Bibliography() error = %v", err)
	}

	want := "- 1. Doe, J., & Smith, J. A. A fast algorithm (2020)\n" +
		"- 2. Knuth, D. The Art of Computer Programming (1968)\n"
	if got != want {
		t.Errorf("Bibliography() =\n%q\nwant\n%q", got, want)
	}
}

func TestTemplate_Funcs(t *testing.T) {
	tmpl, err := NewTemplate("funcs", TemplateOptions{
		Layout: `{{upper .CitationKey}}|{{vancouverNames .Author}}|{{volumeIssue .}}|{{doiURL .DOI}}|{{terminate .Title}}`,
	})
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}

	got, err := tmpl.Bibliography([]citation.Citation{journalArticle()})
	if err != nil {
		t.Fatalf("Bibliography() error = %v", err)
	}
	want := "DOE2020FAST|Doe J, Smith JA|12(3)|https://doi.org/10.1/x|A fast algorithm.\n"
	if got != want {
		t.Errorf("Bibliography() = %q, want %q", got, want)
	}
}

func TestTemplate_NoSortKeepsOrder(t *testing.T) {
	tmpl, err := NewTemplate("ids", TemplateOptions{Layout: "{{.ID}}", Sort: SortNone})
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}
	got, err := tmpl.Bibliography([]citation.Citation{book(), journalArticle()})
	if err != nil {
		t.Fatalf("Bibliography() error = %v", err)
	}
	if got != "r2\nr1\n" {
		t.Errorf("Bibliography() = %q, want input order", got)
	}
}

func TestNewTemplate_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts TemplateOptions
	}{
		{"empty layout", TemplateOptions{Layout: "  "}},
		{"unknown sort", TemplateOptions{Layout: "{{.Title}}", Sort: "year"}},
		{"unclosed action", TemplateOptions{Layout: "{{.Title"}},
		{"unknown function", TemplateOptions{Layout: "{{shout .Title}}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTemplate("bad", tt.opts); err == nil {
				t.Error("NewTemplate() should fail")
			}
		})
	}
}

func TestTemplate_ExecutionError(t *testing.T) {
	tmpl, err := NewTemplate("bad", TemplateOptions{Layout: "{{.NoSuchField}}"})
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}
	_, err = tmpl.Bibliography([]citation.Citation{journalArticle()})
	if err == nil {
		t.Fatal("Bibliography() should fail for unknown field")
	}
	if !strings.Contains(err.Error(), "r1") {
		t.Errorf("error %q should name the failing entry", err)
	}
}

func TestTemplate_Empty(t *testing.T) {
	tmpl, err := NewTemplate("ids", TemplateOptions{Layout: "{{.ID}}"})
	if err != nil {
		t.Fatalf("NewTemplate() error = %v", err)
	}
	got, err := tmpl.Bibliography(nil)
	if err != nil || got != "" {
		t.Errorf("Bibliography(nil) = %q, %v; want empty, nil", got, err)
	}
}
