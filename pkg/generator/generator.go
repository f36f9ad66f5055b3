// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generator

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/extpack/extpack/pkg/errors"
)

// TemplateSuffix is appended to a template name to locate its source file.
const TemplateSuffix = ".tmpl"

//go:embed templates/*.tmpl
var embedded embed.FS

// Generator renders named templates from a template root, compiling each
// template once and caching the result. A Generator is safe for concurrent use.
type Generator struct {
	root  fs.FS
	funcs template.FuncMap

	mu    sync.Mutex
	cache map[string]*template.Template
}

// Option is a functional option for configuring a Generator.
type Option func(*Generator)

// WithTemplateFS replaces the embedded templates with root.
func WithTemplateFS(root fs.FS) Option {
	return func(g *Generator) {
		g.root = root
	}
}

// WithTemplateDir layers a directory on disk over the current root: a
// template present in dir replaces the one of the same name, the rest are
// still read from the root.
func WithTemplateDir(dir string) Option {
	return func(g *Generator) {
		g.root = overlayFS{upper: os.DirFS(dir), lower: g.root}
	}
}

// overlayFS resolves names in upper first, then lower.
type overlayFS struct {
	upper fs.FS
	lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.lower.Open(name)
}

// ReadDir merges both listings; upper wins on name clashes.
func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	seen := make(map[string]fs.DirEntry)
	upper, upperErr := fs.ReadDir(o.upper, name)
	if upperErr != nil && !errors.Is(upperErr, fs.ErrNotExist) {
		return nil, upperErr
	}
	lower, lowerErr := fs.ReadDir(o.lower, name)
	if lowerErr != nil && upperErr != nil {
		return nil, lowerErr
	}
	for _, e := range lower {
		seen[e.Name()] = e
	}
	for _, e := range upper {
		seen[e.Name()] = e
	}
	entries := make([]fs.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// New returns a Generator using the embedded templates unless overridden.
func New(opts ...Option) *Generator {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(fmt.Sprintf("embedded templates unavailable: %v", err))
	}
	g := &Generator{
		root:  sub,
		cache: make(map[string]*template.Template),
	}
	g.funcs = template.FuncMap{
		"json":        toJSON,
		"jsonAt":      toJSONAt,
		"capitalize":  capitalize,
		"publisherOf": publisherOf,
		"indent":      indent,
		"join":        strings.Join,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render executes the named template against data and returns the output.
func (g *Generator) Render(name string, data any) (string, error) {
	tmpl, err := g.compiled(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeBuild,
			fmt.Sprintf("failed to render template %q", name), err,
			map[string]any{"template": name})
	}
	return buf.String(), nil
}

// RenderToFile renders the named template and writes it to outPath,
// replacing any existing file. The parent directory must exist.
func (g *Generator) RenderToFile(name string, data any, outPath string) error {
	content, err := g.Render(name, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return errors.WrapWithContext(errors.ErrCodeBuild,
			fmt.Sprintf("failed to write %s", outPath), err,
			map[string]any{"template": name, "path": outPath})
	}
	slog.Debug("template rendered", "template", name, "path", outPath, "size_bytes", len(content))
	return nil
}

// ClearCache drops all compiled templates.
func (g *Generator) ClearCache() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache = make(map[string]*template.Template)
}

// CacheSize returns the number of compiled templates held.
func (g *Generator) CacheSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}

// Names lists the templates available under the root, sorted.
func (g *Generator) Names() ([]string, error) {
	matches, err := fs.Glob(g.root, "*"+TemplateSuffix)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBuild, "failed to list templates", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, TemplateSuffix))
	}
	sort.Strings(names)
	return names, nil
}

func (g *Generator) compiled(name string) (*template.Template, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if tmpl, ok := g.cache[name]; ok {
		templateCacheHits.Inc()
		return tmpl, nil
	}
	templateCacheMisses.Inc()

	src, err := fs.ReadFile(g.root, name+TemplateSuffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewWithContext(errors.ErrCodeBuild,
				fmt.Sprintf("template %q not found", name),
				map[string]any{"template": name})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeBuild,
			fmt.Sprintf("failed to read template %q", name), err,
			map[string]any{"template": name})
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(g.funcs).
		Parse(string(src))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeBuild,
			fmt.Sprintf("failed to parse template %q", name), err,
			map[string]any{"template": name})
	}

	g.cache[name] = tmpl
	return tmpl, nil
}

// toJSON encodes v as indented JSON without HTML escaping. Map keys are
// emitted in sorted order.
func toJSON(v any) (string, error) {
	return toJSONAt(0, v)
}

// toJSONAt is toJSON for a value nested level indentation steps deep.
func toJSONAt(level int, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(strings.Repeat("  ", level), "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func capitalize(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// publisherOf returns the publisher segment of an extension id.
func publisherOf(id string) string {
	publisher, _, _ := strings.Cut(id, ".")
	return publisher
}

func indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
