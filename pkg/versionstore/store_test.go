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
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/version"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)
	assert.Empty(t, s.Entries())

	_, ok := s.Get("vscode", "python")
	assert.False(t, ok)
}

func TestOpenMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}

func TestSetSaveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "versions.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Set("vscode", "python", "1.4.0"))
	require.NoError(t, s.Set("cursor", "go", "2.0.0"))
	require.NoError(t, s.Save())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, Entries{
		{IDE: "cursor", Language: "go", Version: "2.0.0"},
		{IDE: "vscode", Language: "python", Version: "1.4.0"},
	}, reopened.Entries())
}

func TestSetRejectsInvalid(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)

	assert.True(t, errors.IsCode(s.Set("vscode", "python", "1.0"), errors.ErrCodeInvalidRequest))
	assert.True(t, errors.IsCode(s.Set("", "python", "1.0.0"), errors.ErrCodeInvalidRequest))
}

func TestBump(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)

	tests := []struct {
		part version.Part
		want string
	}{
		{version.PartPatch, "1.0.1"},
		{version.PartMinor, "1.1.0"},
		{version.PartPatch, "1.1.1"},
		{version.PartMajor, "2.0.0"},
	}
	for _, tt := range tests {
		got, err := s.Bump("vscode", "python", tt.part, "1.0.0")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err = s.Bump("vscode", "go", version.Part("huge"), "1.0.0")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	_, err = s.Bump("vscode", "rust", version.PartPatch, "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestBumpConcurrent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, lang := range []string{"python", "go", "rust", "java"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Bump("vscode", lang, version.PartMinor, "1.0.0")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, s.Entries(), 4)
}

const generatedManifest = `{
  "name": "vscode-python-pack",
  "version": "1.0.0",
  "publisher": "acme",
  "engines": {
    "vscode": "^1.80.0"
  }
}
`

func TestSync(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(manifest, []byte(generatedManifest), 0o644))

	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)

	synced, err := s.Sync("vscode", "python", dir)
	require.NoError(t, err)
	assert.False(t, synced, "nothing stored yet")

	require.NoError(t, s.Set("vscode", "python", "1.3.0"))
	synced, err = s.Sync("vscode", "python", dir)
	require.NoError(t, err)
	assert.True(t, synced)

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.3.0"`)
	assert.Contains(t, string(data), `"vscode": "^1.80.0"`)
	assert.Equal(t, len(generatedManifest), len(data))

	synced, err = s.Sync("vscode", "python", dir)
	require.NoError(t, err)
	assert.False(t, synced, "already in sync")
}

func TestSyncWithoutManifest(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)
	require.NoError(t, s.Set("vscode", "python", "1.3.0"))

	synced, err := s.Sync("vscode", "python", t.TempDir())
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestSyncAddsMissingVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"x"}`), 0o644))

	s, err := Open(filepath.Join(t.TempDir(), "versions.json"))
	require.NoError(t, err)
	require.NoError(t, s.Set("vscode", "python", "2.0.0"))

	synced, err := s.Sync("vscode", "python", dir)
	require.NoError(t, err)
	assert.True(t, synced)

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "2.0.0"`)
}

func TestEntriesTable(t *testing.T) {
	e := Entries{{IDE: "vscode", Language: "go", Version: "1.0.0"}}
	assert.Equal(t, []string{"IDE", "LANGUAGE", "VERSION"}, e.TableHeader())
	assert.Equal(t, [][]string{{"vscode", "go", "1.0.0"}}, e.TableRows())
}
