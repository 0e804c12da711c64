package csl

import (
	"strings"
	"testing"

	"github.com/matsen/bipcite/internal/citation"
)

func TestBibTeX_Article(t *testing.T) {
	got := BibTeX([]citation.Citation{journalArticle()})

	want := `@article{doe2020fast,
  author = {Doe, Jane and Smith, John A.},
  title = {A fast algorithm},
  journal = {Journal of Tests},
  year = {2020},
  volume = {12},
  number = {3},
  pages = {1--10},
  doi = {10.1/x},
}
`
	if got != want {
		t.Errorf("BibTeX() =\n%s\nwant\n%s", got, want)
	}
}

func TestBibTeX_Inproceedings(t *testing.T) {
	got := BibTeX([]citation.Citation{conferencePaper()})

	if !strings.HasPrefix(got, "@inproceedings{ren2020balanced,") {
		t.Errorf("conference paper should be @inproceedings, got:\n%s", got)
	}
	if !strings.Contains(got, "booktitle = {NeurIPS}") {
		t.Errorf("conference paper should use booktitle, got:\n%s", got)
	}
	if !strings.Contains(got, "publisher = {Curran}") {
		t.Errorf("missing publisher, got:\n%s", got)
	}
}

func TestBibTeX_Book(t *testing.T) {
	got := BibTeX([]citation.Citation{book()})

	if !strings.HasPrefix(got, "@book{knuth1968computer,") {
		t.Errorf("book should be @book, got:\n%s", got)
	}
	if strings.Contains(got, "journal =") {
		t.Errorf("book should not have a journal field, got:\n%s", got)
	}
}

func TestBibTeX_KeyFallsBackToID(t *testing.T) {
	got := BibTeX([]citation.Citation{{ID: "rec-9", Title: "Untitled"}})
	if !strings.HasPrefix(got, "@article{rec-9,") {
		t.Errorf("entry without citation key should use ID, got:\n%s", got)
	}
	if strings.Contains(got, "author =") || strings.Contains(got, "year =") {
		t.Errorf("empty fields should be omitted, got:\n%s", got)
	}
}

func TestBibTeX_Multiple(t *testing.T) {
	got := BibTeX([]citation.Citation{journalArticle(), book()})
	if !strings.Contains(got, "}\n\n@book{") {
		t.Errorf("entries should be separated by a blank line, got:\n%s", got)
	}
	if strings.Count(got, "@") != 2 {
		t.Errorf("want 2 entries, got:\n%s", got)
	}
}

func TestBibTeX_Empty(t *testing.T) {
	if got := BibTeX(nil); got != "" {
		t.Errorf("BibTeX(nil) = %q, want empty", got)
	}
}

func TestBibTeX_LeavesPostPassCharacters(t *testing.T) {
	c := citation.Citation{ID: "x", Title: "R&D at 100% #1", Publisher: "Smith & Sons"}
	got := BibTeX([]citation.Citation{c})
	if !strings.Contains(got, "title = {R&D at 100% #1}") {
		t.Errorf("&, %% and # should pass through unescaped, got:\n%s", got)
	}
	if !strings.Contains(got, "publisher = {Smith & Sons}") {
		t.Errorf("publisher should pass through, got:\n%s", got)
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"$100 price", `\$100 price`},
		{"under_score", `under\_score`},
		{"test~tilde", `test\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
		{"A & B 100% #1", "A & B 100% #1"},
		{"{Braces} kept", "{Braces} kept"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeLatex(tt.input); got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPages(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1-10", "1--10"},
		{"1--10", "1--10"},
		{"1–10", "1--10"},
		{"42", "42"},
		{"e1234", "e1234"},
	}

	for _, tt := range tests {
		if got := formatPages(tt.input); got != tt.want {
			t.Errorf("formatPages(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []citation.Name
		want    string
	}{
		{"single", []citation.Name{{Given: "John", Family: "Smith"}}, "Smith, John"},
		{"two", []citation.Name{{Given: "John", Family: "Smith"}, {Given: "Jane", Family: "Doe"}}, "Smith, John and Doe, Jane"},
		{"family only", []citation.Name{{Family: "Corporation"}}, "Corporation"},
		{"mixed", []citation.Name{{Given: "John", Family: "Smith"}, {Family: "WHO"}}, "Smith, John and WHO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}
