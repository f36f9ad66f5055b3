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

package versionstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/version"
)

// manifestVersion matches the first "version" member of a package.json,
// which in generated manifests is the top-level one.
var manifestVersion = regexp.MustCompile(`"version"(\s*):(\s*)"[^"]*"`)

// Store is a persisted ide -> language -> version map.
// A Store is safe for concurrent use.
type Store struct {
	path string

	mu       sync.RWMutex
	versions map[string]map[string]string
}

// Entry is one stored version.
type Entry struct {
	IDE      string `json:"ide" yaml:"ide"`
	Language string `json:"language" yaml:"language"`
	Version  string `json:"version" yaml:"version"`
}

// Entries is a list of stored versions.
type Entries []Entry

// TableHeader implements serializer.Tabular.
func (e Entries) TableHeader() []string {
	return []string{"IDE", "LANGUAGE", "VERSION"}
}

// TableRows implements serializer.Tabular.
func (e Entries) TableRows() [][]string {
	rows := make([][]string, 0, len(e))
	for _, entry := range e {
		rows = append(rows, []string{entry.IDE, entry.Language, entry.Version})
	}
	return rows
}

// Open reads the store at path. A missing file yields an empty store that
// is created on Save.
func Open(path string) (*Store, error) {
	s := &Store{
		path:     path,
		versions: make(map[string]map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
			"failed to read version store", err, map[string]any{"path": path})
	}

	if err := json.Unmarshal(data, &s.versions); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
			"version store is not valid JSON", err, map[string]any{"path": path}).
			WithHint("expected an object of the form {\"vscode\": {\"python\": \"1.0.0\"}}")
	}
	if s.versions == nil {
		s.versions = make(map[string]map[string]string)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored version for (ide, language).
func (s *Store) Get(ide, language string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[ide][language]
	return v, ok
}

// Set records a version for (ide, language).
func (s *Store) Set(ide, language, v string) error {
	if ide == "" || language == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "ide and language are required")
	}
	if _, err := version.ParseVersion(v); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid version %q", v), err,
			map[string]any{"ide": ide, "language": language})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[ide] == nil {
		s.versions[ide] = make(map[string]string)
	}
	s.versions[ide][language] = v
	return nil
}

// Bump increments part of the stored version, starting from base when
// nothing is stored yet, and records the result.
func (s *Store) Bump(ide, language string, part version.Part, base string) (string, error) {
	current, ok := s.Get(ide, language)
	if !ok {
		current = base
	}

	v, err := version.ParseVersion(current)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("cannot bump invalid version %q", current), err,
			map[string]any{"ide": ide, "language": language})
	}
	next, err := v.Bump(part)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, "cannot bump version", err)
	}

	if err := s.Set(ide, language, next.String()); err != nil {
		return "", err
	}

	slog.Debug("version bumped",
		"ide", ide,
		"language", language,
		"from", current,
		"to", next.String(),
	)
	return next.String(), nil
}

// Entries returns every stored version sorted by ide and language.
func (s *Store) Entries() Entries {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make(Entries, 0)
	for ide, langs := range s.versions {
		for lang, v := range langs {
			entries = append(entries, Entry{IDE: ide, Language: lang, Version: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IDE != entries[j].IDE {
			return entries[i].IDE < entries[j].IDE
		}
		return entries[i].Language < entries[j].Language
	})
	return entries
}

// Save writes the store atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.versions, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode version store", err)
	}
	data = append(data, '\n')

	if err := writeAtomic(s.path, data); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to write version store", err, map[string]any{"path": s.path})
	}
	return nil
}

// Sync writes the stored version for (ide, language) into the package.json
// generated in packageDir, so the next build carries it over. It reports
// false when there is nothing to sync: no stored version, no manifest, or
// the manifest already has the version.
func (s *Store) Sync(ide, language, packageDir string) (bool, error) {
	v, ok := s.Get(ide, language)
	if !ok {
		return false, nil
	}

	path := filepath.Join(packageDir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapWithContext(errors.ErrCodeBuild,
			"failed to read package manifest", err, map[string]any{"path": path})
	}

	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeBuild,
			"package manifest is not valid JSON", err, map[string]any{"path": path}).
			WithHint("regenerate it with: extpack build")
	}
	if manifest["version"] == v {
		return false, nil
	}

	var updated []byte
	if _, present := manifest["version"]; present && manifestVersion.Match(data) {
		loc := manifestVersion.FindSubmatchIndex(data)
		repl := manifestVersion.Expand(nil, []byte(`"version"${1}:${2}`+quote(v)), data, loc)
		updated = append(append(append([]byte{}, data[:loc[0]]...), repl...), data[loc[1]:]...)
	} else {
		manifest["version"] = v
		if updated, err = json.MarshalIndent(manifest, "", "  "); err != nil {
			return false, errors.Wrap(errors.ErrCodeInternal, "failed to encode package manifest", err)
		}
		updated = append(updated, '\n')
	}

	if err := writeAtomic(path, updated); err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeBuild,
			"failed to write package manifest", err, map[string]any{"path": path})
	}

	slog.Info("version synced into manifest",
		"ide", ide,
		"language", language,
		"version", v,
		"path", path,
	)
	return true, nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// writeAtomic writes data to a temp file next to path and renames it.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
