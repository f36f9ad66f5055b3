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

package vsix

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/extpack/extpack/pkg/version"
)

// ManifestEntry is the archive path of the extension's package manifest.
const ManifestEntry = "extension/package.json"

// ErrManifestNotFound is returned when an archive has no package manifest.
var ErrManifestNotFound = fmt.Errorf("archive has no %s entry", ManifestEntry)

// Manifest holds the package.json fields the packager and publisher use.
type Manifest struct {
	Name          string     `json:"name"`
	DisplayName   string     `json:"displayName"`
	Description   string     `json:"description"`
	Version       string     `json:"version"`
	Publisher     string     `json:"publisher"`
	License       string     `json:"license"`
	Icon          string     `json:"icon"`
	Main          string     `json:"main"`
	Keywords      []string   `json:"keywords"`
	Categories    []string   `json:"categories"`
	ExtensionPack []string   `json:"extensionPack"`
	Engines       Engines    `json:"engines"`
	Repository    Repository `json:"repository"`
}

// Engines lists the editor engine ranges an extension supports.
type Engines struct {
	VSCode string `json:"vscode"`
}

// Repository is the source location declared in the manifest.
type Repository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ID returns "publisher.name".
func (m *Manifest) ID() string {
	return m.Publisher + "." + m.Name
}

// MainEntry returns the package-relative path of the entry point, or "" when
// the manifest declares none. A missing suffix resolves to ".js".
func (m *Manifest) MainEntry() string {
	if m.Main == "" {
		return ""
	}
	p := path.Clean(strings.TrimPrefix(m.Main, "./"))
	if path.Ext(p) == "" {
		p += ".js"
	}
	return p
}

// Validate checks the fields required to package and publish.
func (m *Manifest) Validate() error {
	switch {
	case m.Name == "":
		return fmt.Errorf("manifest is missing \"name\"")
	case m.Publisher == "":
		return fmt.Errorf("manifest is missing \"publisher\"")
	case m.Version == "":
		return fmt.Errorf("manifest is missing \"version\"")
	case m.Engines.VSCode == "":
		return fmt.Errorf("manifest is missing \"engines.vscode\"")
	}
	if _, err := version.ParseVersion(m.Version); err != nil {
		return fmt.Errorf("manifest version %q: %w", m.Version, err)
	}
	return nil
}

func decodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid package manifest: %w", err)
	}
	return &m, nil
}

// ReadManifest extracts the package manifest from a packaged artifact. It
// stops at the first matching entry; other entries are never decompressed.
func ReadManifest(artifactPath string) (*Manifest, error) {
	r, err := zip.OpenReader(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", artifactPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != ManifestEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in %s: %w", ManifestEntry, artifactPath, err)
		}
		m, err := decodeManifest(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		if m.Publisher == "" || m.Name == "" || m.Version == "" {
			return nil, fmt.Errorf("manifest in %s must declare publisher, name, and version", artifactPath)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%s: %w", artifactPath, ErrManifestNotFound)
}
