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

package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extpack/extpack/pkg/bundler/result"
	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/publisher"
)

const pythonCollection = `default:
  description: Python development essentials
  tags: [python]
  requiredExtensions:
    - id: ms-python.python
      name: Python
      description: Language support
      publisher: Microsoft
      license: MIT
  documentation:
    setup: Install Python 3.12.
    troubleshooting: Select an interpreter.
`

const goCollection = `default:
  description: Go essentials
  requiredExtensions:
    - id: golang.go
      name: Go
      description: Go language support
      publisher: Go Team at Google
      license: MIT
  keybindings:
    - key: ctrl+alt+t
      command: go.test.package
  documentation:
    setup: Install Go.
    troubleshooting: Run Go Install/Update Tools.
`

const invalidCollection = `default:
  description: Broken
  requiredExtensions:
    - id: invalidid
      name: Broken
      description: Broken
      publisher: Nobody
      license: MIT
  documentation:
    setup: n/a
    troubleshooting: n/a
`

// workspace is a temporary project layout for end-to-end command tests.
type workspace struct {
	root string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	w := &workspace{root: t.TempDir()}
	w.write(t, "collections/vscode/python.yaml", pythonCollection)
	w.write(t, "collections/cursor/go.yaml", goCollection)
	w.write(t, "assets/icon.png", "png")
	return w
}

func (w *workspace) path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *workspace) write(t *testing.T, rel, content string) {
	t.Helper()
	p := w.path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// buildArgs returns the layout flags for build.
func (w *workspace) buildArgs(extra ...string) []string {
	args := []string{
		"build",
		"--config-root", w.path("collections"),
		"--out-dir", w.path("packages"),
		"--dist-dir", w.path("dist"),
		"--assets-dir", w.path("assets"),
		"--publisher", "acme",
	}
	return append(args, extra...)
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newRootCmd().Run(context.Background(), append([]string{name}, args...))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func hasName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	for _, want := range []string{"build", "list", "validate", "publish", "version"} {
		if !hasName(names, want) {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain", os.ErrNotExist, exitError},
		{"structured", errors.New(errors.ErrCodeBuild, "boom"), exitError},
		{"canceled", errors.Wrap(errors.ErrCodeInternal, "stopped", context.Canceled), exitCanceled},
		{"deadline", context.DeadlineExceeded, exitCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestBuildCommand(t *testing.T) {
	w := newWorkspace(t)
	out := w.path("build.json")

	err := run(t, w.buildArgs(
		"--ide", "vscode", "--language", "python",
		"--package", "--format", "json", "--output", out)...)
	require.NoError(t, err)

	var res result.Output
	readJSON(t, out, &res)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "1.0.0", res.Results[0].Metadata.Version)
	assert.Equal(t, "acme.vscode-python-pack", res.Results[0].Metadata.ExtensionID)
	assert.FileExists(t, w.path("packages/vscode/python/package.json"))
	assert.FileExists(t, w.path("dist/vscode/vscode-python-1.0.0.vsix"))
	assert.FileExists(t, w.path("dist/vscode/vscode-python-1.0.0.vsix.sha256"))
}

func TestBuildCommandTemplatesDir(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "templates/LICENSE.tmpl", "Internal use only. {{ .Organization }}")

	require.NoError(t, run(t, w.buildArgs(
		"--ide", "vscode", "--language", "python",
		"--templates-dir", w.path("templates"),
		"--format", "json", "--output", w.path("build.json"))...))

	data, err := os.ReadFile(w.path("packages/vscode/python/LICENSE"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Internal use only."))
	assert.FileExists(t, w.path("packages/vscode/python/out/extension.js"))
}

func TestBuildCommandAll(t *testing.T) {
	w := newWorkspace(t)
	out := w.path("build.json")

	require.NoError(t, run(t, w.buildArgs("--all", "--format", "json", "--output", out)...))

	var res result.Output
	readJSON(t, out, &res)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "cursor", res.Results[0].Metadata.IDE)
	assert.Equal(t, "vscode", res.Results[1].Metadata.IDE)
	assert.Empty(t, res.Errors)
}

func TestBuildCommandAllReportsFailures(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "collections/vscode/rust.yaml", invalidCollection)
	out := w.path("build.json")

	err := run(t, w.buildArgs("--all", "--format", "json", "--output", out)...)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBuild))

	var res result.Output
	readJSON(t, out, &res)
	assert.Len(t, res.Results, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "rust", res.Errors[0].Language)
}

func TestBuildCommandOptionErrors(t *testing.T) {
	w := newWorkspace(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing language", w.buildArgs("--ide", "vscode"), "--ide and --language are required"},
		{"language with all", w.buildArgs("--all", "--language", "go"), "cannot be combined"},
		{"bad format", w.buildArgs("--ide", "vscode", "--language", "python", "--format", "xml"), "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildCommandMissingCollection(t *testing.T) {
	w := newWorkspace(t)
	err := run(t, w.buildArgs("--ide", "vscode", "--language", "zig")...)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}

func TestListCommand(t *testing.T) {
	w := newWorkspace(t)
	out := w.path("list.json")

	err := run(t, "list",
		"--config-root", w.path("collections"),
		"--out-dir", w.path("packages"),
		"--format", "json", "--output", out)
	require.NoError(t, err)

	var list []collectionInfo
	readJSON(t, out, &list)
	assert.Equal(t, []collectionInfo{
		{IDE: "cursor", Language: "go", Pack: "cursor-go-pack", Version: "1.0.0"},
		{IDE: "vscode", Language: "python", Pack: "vscode-python-pack", Version: "1.0.0"},
	}, list)
}

func TestValidateCommand(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "collections/vscode/rust.yaml", invalidCollection)
	out := w.path("validate.json")

	err := run(t, "validate", "--config-root", w.path("collections"), "--format", "json", "--output", out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	var reports []validationReport
	readJSON(t, out, &reports)
	require.Len(t, reports, 3)

	var rust validationReport
	for _, r := range reports {
		if r.Language == "rust" {
			rust = r
			continue
		}
		assert.True(t, r.Valid, "%s/%s should be valid", r.IDE, r.Language)
	}
	assert.False(t, rust.Valid)
	require.NotEmpty(t, rust.Errors)
	assert.Contains(t, strings.Join(rust.Errors, "\n"), "invalidid")
}

func TestValidateCommandSingle(t *testing.T) {
	w := newWorkspace(t)
	err := run(t, "validate",
		"--config-root", w.path("collections"),
		"--ide", "vscode", "--language", "python",
		"--output", w.path("validate.txt"))
	require.NoError(t, err)
}

func TestVersionBumpPreservedByBuild(t *testing.T) {
	w := newWorkspace(t)
	versions := w.path("versions.json")
	target := []string{"--ide", "vscode", "--language", "python"}

	require.NoError(t, run(t, w.buildArgs(target...)...))

	bump := append([]string{"version", "bump", "--part", "minor",
		"--versions", versions, "--out-dir", w.path("packages")}, target...)
	require.NoError(t, run(t, bump...))

	out := w.path("build.json")
	require.NoError(t, run(t, w.buildArgs(append(target, "--format", "json", "--output", out)...)...))

	var res result.Output
	readJSON(t, out, &res)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "1.1.0", res.Results[0].Metadata.Version)

	get := w.path("get.json")
	require.NoError(t, run(t, append([]string{"version", "get", "--versions", versions,
		"--format", "json", "--output", get}, target...)...))
	var entries []map[string]string
	readJSON(t, get, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.1.0", entries[0]["version"])
}

func TestVersionSetRejectsInvalid(t *testing.T) {
	w := newWorkspace(t)
	err := run(t, "version", "set", "--ide", "vscode", "--language", "python",
		"--to", "not-a-version", "--versions", w.path("versions.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestPublishCommandOptionErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "oci without target",
			args: []string{"publish", "--registry", "oci", "--artifact", "x.vsix"},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "--oci-target")
			},
		},
		{
			name: "all registries",
			args: []string{"publish", "--registry", "all", "--artifact", "x.vsix"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
			},
		},
		{
			name: "missing credential",
			args: []string{"publish", "--registry", "openvsx", "--artifact", "x.vsix"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OVSX_PAT", "")
			err := run(t, tt.args...)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestBuildThenPublish(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, run(t, w.buildArgs("--ide", "vscode", "--language", "python", "--package")...))

	var uploads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/acme/vscode-python-pack/1.0.0":
			if uploads.Load() == 0 {
				rw.WriteHeader(http.StatusNotFound)
				return
			}
			rw.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/api/-/publish":
			if r.URL.Query().Get("token") != "secret" {
				rw.WriteHeader(http.StatusUnauthorized)
				return
			}
			uploads.Add(1)
			rw.WriteHeader(http.StatusCreated)
		default:
			rw.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	t.Setenv("OVSX_PAT", "secret")
	args := []string{"publish",
		"--registry", "openvsx",
		"--artifact", w.path("dist/vscode/vscode-python-1.0.0.vsix"),
		"--openvsx-url", srv.URL,
		"--format", "json",
	}

	first := w.path("publish1.json")
	require.NoError(t, run(t, append(args, "--output", first)...))
	var res publisher.Result
	readJSON(t, first, &res)
	assert.True(t, res.IsUpdate)
	assert.Equal(t, "acme.vscode-python-pack", res.ExtensionID)
	assert.Equal(t, srv.URL+"/extension/acme/vscode-python-pack/1.0.0", res.URL)

	second := w.path("publish2.json")
	require.NoError(t, run(t, append(args, "--output", second)...))
	readJSON(t, second, &res)
	assert.False(t, res.IsUpdate)
	assert.Equal(t, int32(1), uploads.Load())
}
