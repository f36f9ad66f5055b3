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

package collection

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultExport is the first export name probed in every source.
const DefaultExport = "default"

// SourceExtensions lists the accepted source file suffixes in probe order.
var SourceExtensions = []string{".yaml", ".yml", ".json", ".cue"}

func isSourceFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// decodeSource parses a source document into its top-level exports.
func decodeSource(path string, data []byte) (map[string]any, error) {
	var doc any
	switch filepath.Ext(path) {
	case ".cue":
		v, err := decodeCUE(path, data)
		if err != nil {
			return nil, err
		}
		doc = v
	default:
		// JSON is a subset of YAML, so one decoder serves both.
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}

	exports, ok := normalizeDoc(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top level must be a mapping of export names, got %s", kindOf(doc))
	}
	return exports, nil
}

func decodeCUE(path string, data []byte) (any, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	var doc any
	if err := value.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return doc, nil
}

// formatCUEError flattens CUE's error list into "path: message" lines.
func formatCUEError(err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}
	lines := make([]string, 0, len(list))
	for _, e := range list {
		msg := e.Error()
		if p := strings.Join(cueerrors.Path(e), "."); p != "" && !strings.HasPrefix(msg, p) {
			msg = p + ": " + msg
		}
		lines = append(lines, msg)
	}
	return fmt.Errorf("%s", strings.Join(lines, "; "))
}

// normalizeDoc converts any-keyed maps produced by the YAML decoder into
// string-keyed maps so the document can be re-encoded as JSON.
func normalizeDoc(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeDoc(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeDoc(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeDoc(val)
		}
		return t
	default:
		return v
	}
}

// ExportNames returns the export names probed for language, in order:
// "default", the language itself, then its camelCase form.
func ExportNames(lang string) []string {
	names := []string{DefaultExport}
	for _, n := range []string{lang, camelCase(lang)} {
		if n != "" && !contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

func camelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	if len(parts) == 0 {
		return ""
	}
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(title.String(p))
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
