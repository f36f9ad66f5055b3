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

package bundler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/extpack/extpack/pkg/bundler/checksum"
	"github.com/extpack/extpack/pkg/bundler/config"
	"github.com/extpack/extpack/pkg/bundler/result"
	"github.com/extpack/extpack/pkg/collection"
	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/generator"
	"github.com/extpack/extpack/pkg/vsix"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Packager turns a generated package directory into a distributable archive.
type Packager interface {
	Package(ctx context.Context, packageDir, outPath string) (*vsix.Artifact, error)
}

// Builder generates extension packs from collections.
//
// Thread-safety: Builder is safe for concurrent use. Builds for distinct
// (ide, language) pairs share only the generator's template cache.
type Builder struct {
	cfg      *config.Config
	gen      *generator.Generator
	packager Packager
}

// Option defines a functional option for configuring Builder.
type Option func(*Builder)

// WithConfig sets the builder configuration.
func WithConfig(cfg *config.Config) Option {
	return func(b *Builder) {
		if cfg != nil {
			b.cfg = cfg
		}
	}
}

// WithGenerator sets the template generator.
func WithGenerator(g *generator.Generator) Option {
	return func(b *Builder) {
		if g != nil {
			b.gen = g
		}
	}
}

// WithPackager replaces the default VSIX packager.
func WithPackager(p Packager) Option {
	return func(b *Builder) {
		if p != nil {
			b.packager = p
		}
	}
}

// New creates a Builder with the given options.
//
// Example:
//
//	b, err := bundler.New(
//	    bundler.WithConfig(config.NewConfig(
//	        config.WithOutputDir("packages"),
//	        config.WithPublisher("acme"),
//	    )),
//	)
func New(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:      config.NewConfig(),
		gen:      generator.New(),
		packager: vsix.NewPackager(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid builder configuration", err)
	}
	return b, nil
}

// Config returns the builder configuration.
func (b *Builder) Config() *config.Config {
	return b.cfg
}

// Options selects what a single Build produces.
type Options struct {
	IDE      string
	Language string

	// Package archives the generated directory after rendering.
	Package bool
}

// PackageOptions names the archive Package writes.
type PackageOptions struct {
	IDE      string
	Language string
	Version  string
}

// PackageDir returns the directory a pack for (ide, language) is generated in.
func (b *Builder) PackageDir(ide, language string) string {
	return filepath.Join(b.cfg.OutputDir(), ide, language)
}

// ArtifactPath returns the archive path for a pack version.
func (b *Builder) ArtifactPath(ide, language, version string) string {
	return filepath.Join(b.cfg.DistDir(), ide, fmt.Sprintf("%s-%s-%s.vsix", ide, language, version))
}

// Build renders the pack for c into {OutputDir}/{ide}/{language}:
//   - package.json, README.md, CHANGELOG.md, LICENSE, src/extension.ts,
//     out/extension.js, tsconfig.json and .vscodeignore, always
//   - settings.json, keybindings.json and snippets/{language}.json when the
//     collection declares settings, keybindings or snippets
//   - icon.png, copied from the first matching asset
//
// The version already present in the generated package.json is kept; a first
// build starts at the configured floor version. With Options.Package the
// directory is archived into {DistDir}/{ide}/{ide}-{language}-{version}.vsix.
//
// Structured errors from nested steps are returned unchanged. Anything else
// is wrapped once as a BUILD error naming the failing path.
func (b *Builder) Build(ctx context.Context, c *collection.Collection, opts Options) (*result.BuildResult, error) {
	start := time.Now()

	res, err := b.build(ctx, c, opts)

	status := statusSuccess
	if err != nil {
		status = statusError
	}
	buildsTotal.WithLabelValues(opts.IDE, status).Inc()
	buildDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Debug("build failed",
			"ide", opts.IDE,
			"language", opts.Language,
			"error", err,
		)
		return nil, err
	}

	res.MarkComplete(time.Since(start))

	slog.Info("extension pack generated",
		"extension", res.Metadata.ExtensionID,
		"version", res.Metadata.Version,
		"files", len(res.Files),
		"size_bytes", res.Size,
		"artifact", res.ArtifactPath,
		"duration", res.Metadata.Duration,
	)
	return res, nil
}

func (b *Builder) build(ctx context.Context, c *collection.Collection, opts Options) (*result.BuildResult, error) {
	if c == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "collection cannot be nil")
	}
	if err := checkName("ide", opts.IDE); err != nil {
		return nil, err
	}
	if err := checkName("language", opts.Language); err != nil {
		return nil, err
	}

	packageDir := b.PackageDir(opts.IDE, opts.Language)

	ver := ResolveVersion(packageDir, b.cfg.FloorVersion())

	fingerprint, err := Fingerprint(c)
	if err != nil {
		return nil, wrapBuild(err, packageDir)
	}

	tc := b.templateContext(c, opts, ver, fingerprint)

	res := result.New(opts.IDE, opts.Language)
	res.PackageDir = packageDir
	res.Metadata = result.Metadata{
		BuildID:           uuid.NewString(),
		IDE:               opts.IDE,
		Language:          opts.Language,
		ExtensionID:       tc.ExtensionID(),
		DisplayName:       tc.DisplayName,
		Version:           ver,
		ConfigFingerprint: fingerprint,
		GeneratedAt:       b.cfg.Now().UTC(),
	}

	for _, dir := range []string{packageDir, filepath.Join(packageDir, "src"), filepath.Join(packageDir, "snippets"), filepath.Join(packageDir, "out")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, wrapBuild(err, dir)
		}
	}

	for _, f := range renderPlan(tc) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeBuild, "build cancelled", err)
		}
		path := filepath.Join(packageDir, filepath.FromSlash(f.path))
		if err := b.gen.RenderToFile(f.template, tc, path); err != nil {
			return nil, wrapBuild(err, path)
		}
		size, err := fileSize(path)
		if err != nil {
			return nil, wrapBuild(err, path)
		}
		res.AddFile(f.path, size)
	}

	icon, err := resolveIcon(b.cfg.AssetsDir(), opts.IDE, opts.Language)
	if err != nil {
		return nil, err
	}
	iconPath := filepath.Join(packageDir, iconFile)
	size, err := copyFile(icon, iconPath)
	if err != nil {
		return nil, wrapBuild(err, iconPath)
	}
	res.AddFile(iconFile, size)

	if !opts.Package {
		return res, nil
	}

	artifact, err := b.Package(ctx, packageDir, PackageOptions{
		IDE:      opts.IDE,
		Language: opts.Language,
		Version:  ver,
	})
	if err != nil {
		return nil, err
	}

	var sum string
	if b.cfg.IncludeChecksums() {
		if sum, err = checksum.WriteSidecar(ctx, artifact); err != nil {
			return nil, wrapBuild(err, checksum.SidecarPath(artifact))
		}
	}
	res.SetArtifact(artifact, sum)

	return res, nil
}

// Package archives packageDir into {DistDir}/{ide}/{ide}-{language}-{version}.vsix
// and returns the archive path. The distribution directory is created if
// absent.
func (b *Builder) Package(ctx context.Context, packageDir string, opts PackageOptions) (string, error) {
	if opts.IDE == "" || opts.Language == "" || opts.Version == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, "package options require ide, language, and version")
	}

	outPath := b.ArtifactPath(opts.IDE, opts.Language, opts.Version)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", wrapBuild(err, filepath.Dir(outPath))
	}

	artifact, err := b.packager.Package(ctx, packageDir, outPath)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeBuild, "failed to package extension", err, map[string]any{
			"package_dir": packageDir,
			"artifact":    outPath,
		}).WithHint("check that package.json is a valid extension manifest (name, publisher, version, engines.vscode)")
	}

	slog.Debug("extension packaged",
		"package_dir", packageDir,
		"artifact", artifact.Path,
		"entries", len(artifact.Entries),
	)
	return artifact.Path, nil
}

func (b *Builder) templateContext(c *collection.Collection, opts Options, ver, fingerprint string) generator.TemplateContext {
	now := b.cfg.Now()
	ideName := IDEDisplayName(opts.IDE)
	langName := LanguageDisplayName(opts.Language)

	return generator.TemplateContext{
		IDE:                 opts.IDE,
		IDEDisplayName:      ideName,
		Language:            opts.Language,
		LanguageDisplayName: langName,
		Name:                PackName(opts.IDE, opts.Language),
		DisplayName:         fmt.Sprintf("%s Extension Pack for %s", langName, ideName),
		Description:         c.Description,
		Version:             ver,
		Organization:        b.cfg.Organization(),
		Publisher:           b.cfg.Publisher(),
		RepositoryURL:       b.cfg.RepositoryURL(),
		License:             b.cfg.License(),
		EngineRange:         b.cfg.EngineRange(),
		ConfigFingerprint:   fingerprint,
		GeneratedDate:       now.Format("2006-01-02"),
		Year:                now.Year(),
		Tags:                c.Tags,
		RequiredExtensions:  c.RequiredExtensions,
		OptionalExtensions:  c.OptionalExtensions,
		Settings:            generator.SettingEntries(c.Settings),
		Keybindings:         c.Keybindings,
		Snippets:            c.Snippets,
		Documentation:       c.Documentation,
	}
}

type plannedFile struct {
	template string
	path     string
}

// renderPlan lists the files rendered for a pack, in order.
func renderPlan(tc generator.TemplateContext) []plannedFile {
	plan := []plannedFile{
		{template: "package.json", path: "package.json"},
		{template: "README.md", path: "README.md"},
		{template: "CHANGELOG.md", path: "CHANGELOG.md"},
		{template: "LICENSE", path: "LICENSE"},
		{template: "extension.ts", path: "src/extension.ts"},
		{template: "extension.js", path: "out/extension.js"},
		{template: "tsconfig.json", path: "tsconfig.json"},
		{template: "vscodeignore", path: vsix.IgnoreFile},
	}
	if tc.HasSettings() {
		plan = append(plan, plannedFile{template: "settings.json", path: "settings.json"})
	}
	if tc.HasKeybindings() {
		plan = append(plan, plannedFile{template: "keybindings.json", path: "keybindings.json"})
	}
	if tc.HasSnippets() {
		plan = append(plan, plannedFile{template: "snippets.json", path: tc.SnippetPath()})
	}
	return plan
}

// wrapBuild passes structured errors through and wraps anything else as a
// BUILD error carrying path.
func wrapBuild(err error, path string) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.WrapWithContext(errors.ErrCodeBuild,
		fmt.Sprintf("failed to generate %s", path), err,
		map[string]any{"path": path})
}

func checkName(field, value string) error {
	if value == "" {
		return errors.New(errors.ErrCodeInvalidRequest, field+" is required")
	}
	if value == "." || value == ".." || strings.ContainsAny(value, `/\`) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid %s %q", field, value),
			map[string]any{field: value})
	}
	return nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
