package style

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/matsen/bipcite/internal/csl"
	"github.com/matsen/bipcite/internal/logging"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// maxParallelScans bounds the number of style files read at once.
const maxParallelScans = 8

// Registry lists styles and resolves style keys to loaded styles.
//
// Loaded user styles are cached for the lifetime of the Registry. A style
// file that changes on disk after it was first loaded is not reloaded.
type Registry struct {
	fs       afero.Fs
	dir      string
	reporter logging.Reporter

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// cacheEntry serialises loading of one key.
type cacheEntry struct {
	mu   sync.Mutex
	tmpl *Template
}

// NewRegistry returns a Registry reading user styles from dir on fs.
// An empty dir disables user styles. A nil fs means the OS filesystem.
func NewRegistry(fs afero.Fs, dir string, reporter logging.Reporter) *Registry {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if reporter == nil {
		reporter = logging.Nop()
	}
	return &Registry{
		fs:       fs,
		dir:      dir,
		reporter: reporter,
		entries:  make(map[string]*cacheEntry),
	}
}

// Dir returns the custom style directory, or "" when none is configured.
func (r *Registry) Dir() string {
	return r.dir
}

// List returns the built-in styles followed by the user styles found in the
// style directory, sorted by key. Files that cannot be read or compiled are
// left out. If the directory itself cannot be read, the built-ins are
// returned along with the error.
func (r *Registry) List(ctx context.Context) ([]Descriptor, error) {
	out := Builtins()
	if r.dir == "" {
		return out, nil
	}

	infos, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return out, fmt.Errorf("reading style directory: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if key, ok := KeyForFile(info.Name()); ok && key != "" {
			names = append(names, info.Name())
		}
	}

	found := make([]*Descriptor, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelScans)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := r.describe(name)
			if err != nil {
				return nil // unreadable styles are skipped
			}
			found[i] = &d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	var discovered []Descriptor
	for _, d := range found {
		if d != nil && !csl.IsBuiltin(d.Key) {
			discovered = append(discovered, *d)
		}
	}
	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].Key < discovered[j].Key
	})

	// ReadDir sorts by name, so k.yaml precedes k.yml here as it does in load.
	for i, d := range discovered {
		if i > 0 && d.Key == discovered[i-1].Key {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// describe reads and compiles one style file and builds its descriptor.
// It accepts exactly the files load would accept.
func (r *Registry) describe(name string) (Descriptor, error) {
	key, _ := KeyForFile(name)
	data, err := afero.ReadFile(r.fs, filepath.Join(r.dir, name))
	if err != nil {
		return Descriptor{}, err
	}
	tmpl, err := Parse(key, data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", name, err)
	}
	return Descriptor{Key: key, Name: tmpl.Title}, nil
}

// Resolve returns the style for key. Built-in keys are answered without
// touching the filesystem; user styles are loaded on first use and cached.
// Failed loads are not cached.
func (r *Registry) Resolve(key string) (csl.Style, error) {
	if s, ok := csl.Builtin(key); ok {
		return s, nil
	}
	if r.dir == "" || key == "" || strings.ContainsAny(key, `/\`) || key == ".." {
		return nil, fmt.Errorf("%w: %q", ErrStyleNotFound, key)
	}

	e := r.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tmpl != nil {
		return e.tmpl.Style, nil
	}

	tmpl, err := r.load(key)
	if err != nil {
		return nil, err
	}
	e.tmpl = tmpl
	return tmpl.Style, nil
}

// Lookup resolves key, falling back to APA when the style cannot be
// loaded. The failure is reported, never returned.
func (r *Registry) Lookup(key string) csl.Style {
	s, err := r.Resolve(key)
	if err == nil {
		return s
	}
	r.reporter.Report(fmt.Sprintf("Citation style %q unavailable, using %s", key, csl.StyleAPA), err, true, "style")
	apa, _ := csl.Builtin(csl.StyleAPA)
	return apa
}

// Cached reports whether key has a loaded user style in the cache.
func (r *Registry) Cached(key string) bool {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tmpl != nil
}

func (r *Registry) entry(key string) *cacheEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &cacheEntry{}
		r.entries[key] = e
	}
	return e
}

// load parses the first file for key, in Extensions order, that loads
// cleanly. If every candidate fails, the first failure is returned.
func (r *Registry) load(key string) (*Template, error) {
	var firstErr error
	for _, ext := range Extensions {
		path := filepath.Join(r.dir, key+ext)
		exists, err := afero.Exists(r.fs, path)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		if !exists {
			continue
		}

		tmpl, err := r.parseFile(key, path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return tmpl, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrStyleNotFound, key, r.dir)
}

func (r *Registry) parseFile(key, path string) (*Template, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tmpl, err := Parse(key, data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return tmpl, nil
}
