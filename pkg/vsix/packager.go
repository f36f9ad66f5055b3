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
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	contentTypesEntry = "[Content_Types].xml"
	vsixManifestEntry = "extension.vsixmanifest"
	extensionPrefix   = "extension/"
)

// FixedZipTime is stamped on every entry so identical inputs produce
// byte-identical archives (1980-01-01 UTC).
var FixedZipTime = time.Unix(315532800, 0).UTC()

// Artifact describes a packaged archive.
type Artifact struct {
	Path     string
	Size     int64
	Entries  []string
	Manifest *Manifest
}

// Packager builds VSIX archives from a generated package directory.
type Packager struct{}

// NewPackager returns a Packager.
func NewPackager() *Packager {
	return &Packager{}
}

// Package archives packageDir into outPath. Files matched by the package's
// ignore list are left out. The archive is written to a temporary file in the
// destination directory and renamed into place.
func (p *Packager) Package(ctx context.Context, packageDir, outPath string) (*Artifact, error) {
	f, err := os.Open(filepath.Join(packageDir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}
	m, err := decodeManifest(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	ignore, err := loadIgnore(packageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}

	files, err := collectFiles(packageDir, ignore)
	if err != nil {
		return nil, err
	}
	if entry := m.MainEntry(); entry != "" && !slices.Contains(files, entry) {
		return nil, fmt.Errorf("entry point %q declared by \"main\" is missing or excluded by %s", entry, IgnoreFile)
	}

	entries := make([]string, 0, len(files))
	for _, rel := range files {
		entries = append(entries, entryName(rel))
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".vsix-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArchive(ctx, tmp, packageDir, files, entries, m); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to set archive permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	slog.Debug("vsix packaged",
		"path", outPath,
		"entries", len(entries),
		"size_bytes", info.Size(),
		"extension", m.ID(),
		"version", m.Version)

	return &Artifact{
		Path:     outPath,
		Size:     info.Size(),
		Entries:  entries,
		Manifest: m,
	}, nil
}

// collectFiles returns the sorted, slash-separated relative paths of every
// regular file under dir that is not ignored.
func collectFiles(dir string, ignore ignoreList) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if ignore.ignored(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// entryName maps a package-relative path to its archive path. Top-level
// files without a suffix (LICENSE) gain ".txt" so they get a content type.
func entryName(rel string) string {
	if !strings.Contains(rel, "/") && path.Ext(rel) == "" {
		rel += ".txt"
	}
	return extensionPrefix + rel
}

func writeArchive(ctx context.Context, w io.Writer, dir string, files, entries []string, m *Manifest) error {
	zw := zip.NewWriter(w)

	ct, err := renderContentTypes(entries)
	if err != nil {
		return fmt.Errorf("failed to render content types: %w", err)
	}
	if err := writeEntry(zw, contentTypesEntry, strings.NewReader(string(ct))); err != nil {
		return err
	}

	vm, err := renderVSIXManifest(m, entries)
	if err != nil {
		return fmt.Errorf("failed to render vsix manifest: %w", err)
	}
	if err := writeEntry(zw, vsixManifestEntry, strings.NewReader(string(vm))); err != nil {
		return err
	}

	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("packaging canceled: %w", err)
		}
		if err := copyEntry(zw, entries[i], filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func copyEntry(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()
	return writeEntry(zw, name, f)
}

func writeEntry(zw *zip.Writer, name string, r io.Reader) error {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = FixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
