/*
Package bundler generates extension packs from collections.

A Builder turns one collection.Collection into a generated package directory
and, optionally, a packaged VSIX archive.

# Architecture

  - Builder: orchestrates version continuity, fingerprinting, rendering,
    icon resolution, and packaging
  - config.Config: immutable builder settings (directories, publisher,
    license, floor version)
  - generator.Generator: renders the pack templates
  - Packager: archives a package directory (vsix.Packager by default)
  - result.BuildResult / result.Output: per-pack and per-run results

# Quick Start

	b, err := bundler.New(bundler.WithConfig(config.NewConfig(
		config.WithPublisher("acme"),
	)))
	if err != nil {
		return err
	}

	c, err := collection.NewLoader("collections").Load(ctx, "vscode", "python")
	if err != nil {
		return err
	}

	res, err := b.Build(ctx, c, bundler.Options{
		IDE:      "vscode",
		Language: "python",
		Package:  true,
	})

# Generated Layout

	packages/vscode/python/
	├── package.json
	├── README.md
	├── CHANGELOG.md
	├── LICENSE
	├── tsconfig.json
	├── .vscodeignore
	├── icon.png
	├── settings.json          (when the collection has settings)
	├── keybindings.json       (when the collection has keybindings)
	├── snippets/python.json   (when the collection has snippets)
	├── src/extension.ts
	└── out/extension.js     (the entry point named by package.json "main")

	dist/vscode/vscode-python-1.0.0.vsix
	dist/vscode/vscode-python-1.0.0.vsix.sha256

# Versions

The version in an existing package.json is carried over on every rebuild.
Missing or unusable versions fall back to the configured floor ("1.0.0").
Bumping is done outside the builder, see the versionstore package.

# Fingerprints

Every build computes a sha256 fingerprint of the collection's normalized
content. It is written into package.json ("configFingerprint") and
BuildResult metadata so that callers can detect collection changes.

# Building Many Packs

BuildAll builds a list of targets concurrently with errgroup, bounded by a
limit. Failures are collected in result.Output rather than aborting the run:

	out, err := b.BuildAll(ctx, loader, targets, 4, false)
	fmt.Println(out.Summary())
	// Output: Generated 24 files (48.2 KB) in 120ms. Success: 3/3 packs.

# Errors

Structured errors from nested steps (templates, icon lookup) are returned
unchanged. Other failures are wrapped once as BUILD errors naming the path.
*/
package bundler
