package style

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matsen/bipcite/internal/citation"
	"github.com/matsen/bipcite/internal/csl"
	"github.com/matsen/bipcite/internal/logging"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const styleDir = "/styles"

// countingFs records every filesystem access.
type countingFs struct {
	afero.Fs
	calls atomic.Int64
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.calls.Add(1)
	return c.Fs.Open(name)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.calls.Add(1)
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.calls.Add(1)
	return c.Fs.Stat(name)
}

func writeStyle(t *testing.T, fs afero.Fs, name, title string) {
	t.Helper()
	data := "style:\n  info:\n    title: " + title + "\n  bibliography:\n    layout: \"{{.Title}}\"\n"
	if err := afero.WriteFile(fs, filepath.Join(styleDir, name), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newObservedRegistry(fs afero.Fs, dir string) (*Registry, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.ErrorLevel)
	return NewRegistry(fs, dir, logging.NewReporter(zap.New(core))), logs
}

func TestResolve_BuiltinWithoutFilesystem(t *testing.T) {
	fs := &countingFs{Fs: afero.NewMemMapFs()}
	r := NewRegistry(fs, styleDir, nil)

	for _, key := range csl.BuiltinKeys() {
		s, err := r.Resolve(key)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", key, err)
		}
		if s.Key() != key {
			t.Errorf("Resolve(%q).Key() = %q", key, s.Key())
		}
	}
	if n := fs.calls.Load(); n != 0 {
		t.Errorf("built-in resolution touched the filesystem %d times", n)
	}
}

func TestResolve_CustomStyleCached(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeStyle(t, fs, "nature.yaml", "Nature")
	r := NewRegistry(fs, styleDir, nil)

	if r.Cached("nature") {
		t.Fatal("nature should not be cached before first use")
	}
	first, err := r.Resolve("nature")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !r.Cached("nature") {
		t.Fatal("nature should be cached after load")
	}

	// The cached style survives removal of the file.
	if err := fs.Remove(filepath.Join(styleDir, "nature.yaml")); err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve("nature")
	if err != nil {
		t.Fatalf("Resolve() after removal error = %v", err)
	}
	if first != second {
		t.Error("second Resolve() should return the cached style")
	}
}

func TestResolve_YmlExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeStyle(t, fs, "ieee.yml", "IEEE")
	r := NewRegistry(fs, styleDir, nil)

	s, err := r.Resolve("ieee")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if s.Key() != "ieee" {
		t.Errorf("Key() = %q, want ieee", s.Key())
	}
}

func TestResolve_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(styleDir, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		key  string
	}{
		{"missing file", styleDir, "chicago"},
		{"no directory configured", "", "chicago"},
		{"empty key", styleDir, ""},
		{"path traversal", styleDir, "../etc/passwd"},
		{"dot dot", styleDir, ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(fs, tt.dir, nil)
			_, err := r.Resolve(tt.key)
			if !errors.Is(err, ErrStyleNotFound) {
				t.Errorf("Resolve(%q) error = %v, want ErrStyleNotFound", tt.key, err)
			}
		})
	}
}

func TestResolve_FailureNotCached(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, filepath.Join(styleDir, "draft.yaml"), []byte("style: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRegistry(fs, styleDir, nil)

	if _, err := r.Resolve("draft"); err == nil {
		t.Fatal("Resolve() should fail for a style without a title")
	}
	if r.Cached("draft") {
		t.Error("failed load should not be cached")
	}

	writeStyle(t, fs, "draft.yaml", "Draft")
	if _, err := r.Resolve("draft"); err != nil {
		t.Errorf("Resolve() after fix error = %v", err)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeStyle(t, fs, "nature.yaml", "Nature")
	r := NewRegistry(fs, styleDir, nil)

	const n = 16
	results := make([]csl.Style, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := r.Resolve("nature")
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			results[i] = s
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent Resolve() calls returned different styles")
		}
	}
}

func TestLookup_FallsBackToAPA(t *testing.T) {
	r, logs := newObservedRegistry(afero.NewMemMapFs(), styleDir)

	s := r.Lookup("chicago")
	if s.Key() != csl.StyleAPA {
		t.Errorf("Lookup(chicago).Key() = %q, want apa", s.Key())
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["source"] != "style" {
		t.Errorf("source = %v, want style", fields["source"])
	}
	if fields["user_visible"] != true {
		t.Errorf("user_visible = %v, want true", fields["user_visible"])
	}
}

func TestLookup_BuiltinNoReport(t *testing.T) {
	r, logs := newObservedRegistry(afero.NewMemMapFs(), styleDir)

	if s := r.Lookup(csl.StyleVancouver); s.Key() != csl.StyleVancouver {
		t.Errorf("Lookup(vancouver).Key() = %q", s.Key())
	}
	if logs.Len() != 0 {
		t.Errorf("got %d log entries, want none", logs.Len())
	}
}

func TestList(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeStyle(t, fs, "nature.yaml", "Nature")
	writeStyle(t, fs, "ieee.yml", "IEEE")
	writeStyle(t, fs, "apa.yaml", "Shadowed APA")
	writeStyle(t, fs, "nature.yml", "Nature again")
	if err := afero.WriteFile(fs, filepath.Join(styleDir, "broken.yaml"), []byte("style: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, filepath.Join(styleDir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll(filepath.Join(styleDir, "sub.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(fs, styleDir, nil)
	got, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	wantKeys := []string{"apa", "vancouver", "harvard1", "ieee", "nature"}
	if len(got) != len(wantKeys) {
		t.Fatalf("List() = %+v, want keys %v", got, wantKeys)
	}
	for i, key := range wantKeys {
		if got[i].Key != key {
			t.Errorf("List()[%d].Key = %q, want %q", i, got[i].Key, key)
		}
	}

	if got[0].Name == "Shadowed APA" {
		t.Error("custom file should not shadow the built-in apa entry")
	}
	if got[3].Name != "IEEE" || got[3].Builtin {
		t.Errorf("ieee descriptor = %+v", got[3])
	}
	if got[4].Name != "Nature" {
		t.Errorf("nature should come from the .yaml file, got %q", got[4].Name)
	}
}

func TestList_NoDirectory(t *testing.T) {
	r := NewRegistry(afero.NewMemMapFs(), "", nil)
	got, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("List() len = %d, want 3 built-ins", len(got))
	}
}

func TestList_UnreadableDirectory(t *testing.T) {
	r := NewRegistry(afero.NewMemMapFs(), "/missing", nil)
	got, err := r.List(context.Background())
	if err == nil {
		t.Error("List() should report a missing directory")
	}
	if len(got) != 3 {
		t.Errorf("List() len = %d, want the 3 built-ins", len(got))
	}
}

func TestListAndResolve_AgreeOnDuplicateKeys(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		wantTitle string // "" means the key is neither listed nor resolvable
		wantOut   string
	}{
		{
			name: "broken yaml falls through to yml",
			files: map[string]string{
				"k.yaml": "style: [\n",
				"k.yml":  "style:\n  info:\n    title: Kay\n  bibliography:\n    layout: \"yml {{.Title}}\"\n",
			},
			wantTitle: "Kay",
			wantOut:   "yml Paper\n",
		},
		{
			name: "valid yaml wins over yml",
			files: map[string]string{
				"k.yaml": "style:\n  info:\n    title: Kay yaml\n  bibliography:\n    layout: \"yaml {{.Title}}\"\n",
				"k.yml":  "style:\n  info:\n    title: Kay yml\n  bibliography:\n    layout: \"yml {{.Title}}\"\n",
			},
			wantTitle: "Kay yaml",
			wantOut:   "yaml Paper\n",
		},
		{
			name: "title present but layout does not compile",
			files: map[string]string{
				"k.yaml": "style:\n  info:\n    title: Kay\n  bibliography:\n    layout: \"{{.Title\"\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for name, data := range tt.files {
				if err := afero.WriteFile(fs, filepath.Join(styleDir, name), []byte(data), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			r := NewRegistry(fs, styleDir, nil)

			list, err := r.List(context.Background())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var listed *Descriptor
			for i := range list {
				if list[i].Key == "k" {
					listed = &list[i]
				}
			}

			s, resolveErr := r.Resolve("k")

			if tt.wantTitle == "" {
				if listed != nil {
					t.Errorf("List() includes %+v, want it omitted", *listed)
				}
				if resolveErr == nil {
					t.Error("Resolve() succeeded for a style List omits")
				}
				return
			}

			if listed == nil || listed.Name != tt.wantTitle {
				t.Errorf("List() entry = %+v, want title %q", listed, tt.wantTitle)
			}
			if resolveErr != nil {
				t.Fatalf("Resolve() error = %v", resolveErr)
			}
			out, err := s.Bibliography([]citation.Citation{{ID: "p", Title: "Paper"}})
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.wantOut {
				t.Errorf("Bibliography() = %q, want %q", out, tt.wantOut)
			}
		})
	}
}
