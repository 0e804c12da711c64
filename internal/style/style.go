// Package style lists and loads citation styles: the built-in ones and user
// style files found in a configured directory.
package style

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matsen/bipcite/internal/csl"
	"gopkg.in/yaml.v3"
)

// ErrStyleNotFound is returned when a style key names neither a built-in
// style nor a file in the custom style directory.
var ErrStyleNotFound = errors.New("style not found")

// Extensions lists the file extensions recognised as style files.
var Extensions = []string{".yaml", ".yml"}

// Descriptor is a style listing entry.
type Descriptor struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Builtin bool   `json:"builtin"`
}

// Template is a loaded user style.
type Template struct {
	Key    string
	Title  string
	Source []byte
	Style  csl.Style
}

var builtinDescriptors = []Descriptor{
	{Key: csl.StyleAPA, Name: "American Psychological Association 7th edition", Builtin: true},
	{Key: csl.StyleVancouver, Name: "Vancouver", Builtin: true},
	{Key: csl.StyleHarvard, Name: "Harvard reference format 1 (author-date)", Builtin: true},
}

// Builtins returns descriptors for the built-in styles.
func Builtins() []Descriptor {
	return slices.Clone(builtinDescriptors)
}

// styleFile is the on-disk format of a user style:
//
//	style:
//	  info:
//	    title: Compact author-year
//	  bibliography:
//	    sort: author
//	    layout: "{{apaNames .Author}} ({{.Year}}). {{.Title}}."
type styleFile struct {
	Style struct {
		Info struct {
			Title string `yaml:"title"`
		} `yaml:"info"`
		Bibliography struct {
			Layout string `yaml:"layout"`
			Sort   string `yaml:"sort"`
			Prefix string `yaml:"prefix"`
			Suffix string `yaml:"suffix"`
		} `yaml:"bibliography"`
	} `yaml:"style"`
}

func decode(data []byte) (*styleFile, error) {
	var f styleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing style file: %w", err)
	}
	if strings.TrimSpace(f.Style.Info.Title) == "" {
		return nil, errors.New("style file has no style.info.title")
	}
	return &f, nil
}

// ParseTitle extracts the display name of a style file.
func ParseTitle(data []byte) (string, error) {
	f, err := decode(data)
	if err != nil {
		return "", err
	}
	return f.Style.Info.Title, nil
}

// Parse loads and compiles a style file under the given key.
func Parse(key string, data []byte) (*Template, error) {
	f, err := decode(data)
	if err != nil {
		return nil, err
	}

	bib := f.Style.Bibliography
	compiled, err := csl.NewTemplate(key, csl.TemplateOptions{
		Layout: bib.Layout,
		Sort:   bib.Sort,
		Prefix: bib.Prefix,
		Suffix: bib.Suffix,
	})
	if err != nil {
		return nil, err
	}

	return &Template{
		Key:    key,
		Title:  f.Style.Info.Title,
		Source: data,
		Style:  compiled,
	}, nil
}

// KeyForFile returns the style key for a file name, and whether the file
// has a recognised style extension.
func KeyForFile(name string) (string, bool) {
	ext := filepath.Ext(name)
	if !slices.Contains(Extensions, ext) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}
