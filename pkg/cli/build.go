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
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/bundler"
	"github.com/extpack/extpack/pkg/bundler/config"
	"github.com/extpack/extpack/pkg/bundler/result"
	"github.com/extpack/extpack/pkg/collection"
	"github.com/extpack/extpack/pkg/defaults"
	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/generator"
	"github.com/extpack/extpack/pkg/serializer"
)

// buildCmdOptions holds parsed options for the build command.
type buildCmdOptions struct {
	ide           string
	language      string
	all           bool
	pkg           bool
	checksums     bool
	parallel      int
	configRoot    string
	outDir        string
	distDir       string
	assetsDir     string
	templatesDir  string
	publisher     string
	organization  string
	repositoryURL string
	license       string
	format        serializer.Format
}

// parseBuildCmdOptions parses and validates command options.
func parseBuildCmdOptions(cmd *cli.Command) (*buildCmdOptions, error) {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return nil, err
	}

	opts := &buildCmdOptions{
		ide:           cmd.String("ide"),
		language:      cmd.String("language"),
		all:           cmd.Bool("all"),
		pkg:           cmd.Bool("package"),
		checksums:     cmd.Bool("checksum"),
		parallel:      cmd.Int("parallel"),
		configRoot:    cmd.String("config-root"),
		outDir:        cmd.String("out-dir"),
		distDir:       cmd.String("dist-dir"),
		assetsDir:     cmd.String("assets-dir"),
		templatesDir:  cmd.String("templates-dir"),
		publisher:     cmd.String("publisher"),
		organization:  cmd.String("organization"),
		repositoryURL: cmd.String("repository-url"),
		license:       cmd.String("license"),
		format:        format,
	}

	if opts.all {
		if opts.language != "" {
			return nil, fmt.Errorf("--language cannot be combined with --all")
		}
		return opts, nil
	}
	if opts.ide == "" || opts.language == "" {
		return nil, fmt.Errorf("--ide and --language are required unless --all is set")
	}
	return opts, nil
}

func (o *buildCmdOptions) config() *config.Config {
	return config.NewConfig(
		config.WithVersion(version),
		config.WithOutputDir(o.outDir),
		config.WithDistDir(o.distDir),
		config.WithAssetsDir(o.assetsDir),
		config.WithPublisher(o.publisher),
		config.WithOrganization(o.organization),
		config.WithRepositoryURL(o.repositoryURL),
		config.WithLicense(o.license),
		config.WithIncludeChecksums(o.checksums),
	)
}

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:                  "build",
		EnableShellCompletion: true,
		Usage:                 "Generate extension packs from collections",
		Description: `Generates an extension pack for one (ide, language) collection, or for every
collection with --all. Each pack is written to {out-dir}/{ide}/{language}:

  - package.json, README.md, CHANGELOG.md, LICENSE, .vscodeignore
  - src/extension.ts and tsconfig.json
  - settings.json, keybindings.json and snippets/{language}.json when declared
  - icon.png from the assets directory

The version in an existing package.json is preserved across rebuilds. Use
"extpack version bump" to move it forward.

# Examples

Build the Python pack for VS Code:
  extpack build --ide vscode --language python

Build and package every collection, writing a JSON summary:
  extpack build --all --package --format json --output build.json

Build every Cursor collection:
  extpack build --all --ide cursor`,
		Flags: []cli.Flag{
			ideFlag(),
			languageFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Build every collection under --config-root (limited to --ide when set)",
			},
			&cli.BoolFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "Archive each generated pack into a .vsix under --dist-dir",
			},
			&cli.BoolFlag{
				Name:  "checksum",
				Value: true,
				Usage: "Write a .sha256 file next to each packaged archive",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Value: defaults.MaxParallelBuilds,
				Usage: "Maximum number of packs built at once with --all",
			},
			configRootFlag(),
			&cli.StringFlag{
				Name:    "out-dir",
				Value:   defaults.OutputDir,
				Sources: cli.EnvVars("EXTPACK_OUTPUT"),
				Usage:   "Root directory for generated pack sources",
			},
			&cli.StringFlag{
				Name:    "dist-dir",
				Value:   defaults.DistDir,
				Sources: cli.EnvVars("EXTPACK_DIST"),
				Usage:   "Root directory for packaged archives",
			},
			&cli.StringFlag{
				Name:    "assets-dir",
				Value:   defaults.AssetsDir,
				Sources: cli.EnvVars("EXTPACK_ASSETS"),
				Usage:   "Directory searched for pack icons",
			},
			&cli.StringFlag{
				Name:    "templates-dir",
				Sources: cli.EnvVars("EXTPACK_TEMPLATES"),
				Usage:   "Directory of *.tmpl files that replace built-in templates of the same name",
			},
			&cli.StringFlag{
				Name:    "publisher",
				Value:   name,
				Sources: cli.EnvVars("EXTPACK_PUBLISHER"),
				Usage:   "Registry publisher identifier written to manifests",
			},
			&cli.StringFlag{
				Name:    "organization",
				Value:   name,
				Sources: cli.EnvVars("EXTPACK_ORGANIZATION"),
				Usage:   "Copyright holder named in generated licenses",
			},
			&cli.StringFlag{
				Name:    "repository-url",
				Sources: cli.EnvVars("EXTPACK_REPOSITORY_URL"),
				Usage:   "Source repository URL written to manifests",
			},
			&cli.StringFlag{
				Name:    "license",
				Value:   defaults.PackLicense,
				Sources: cli.EnvVars("EXTPACK_LICENSE"),
				Usage:   "License declared by generated packs",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseBuildCmdOptions(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, defaults.CLIBuildTimeout)
			defer cancel()

			out, err := runBuild(ctx, opts)
			if err != nil {
				return err
			}

			slog.Info("build complete",
				"packs", len(out.Results),
				"failed", len(out.Errors),
				"files", out.TotalFiles,
				"size_bytes", out.TotalSize,
				"duration_sec", out.TotalDuration.Seconds(),
				"output_dir", out.OutputDir,
			)

			if err := writeResult(ctx, cmd, opts.format, out); err != nil {
				return err
			}

			if out.HasErrors() {
				return errors.New(errors.ErrCodeBuild,
					fmt.Sprintf("%d of %d packs failed to build", len(out.Errors), len(out.Errors)+len(out.Results)))
			}
			return nil
		},
	}
}

// runBuild builds the requested packs. A single target is built directly so
// its structured error reaches the user unchanged.
func runBuild(ctx context.Context, opts *buildCmdOptions) (*result.Output, error) {
	bopts := []bundler.Option{bundler.WithConfig(opts.config())}
	if opts.templatesDir != "" {
		bopts = append(bopts, bundler.WithGenerator(generator.New(generator.WithTemplateDir(opts.templatesDir))))
	}
	b, err := bundler.New(bopts...)
	if err != nil {
		return nil, err
	}
	loader := collection.NewLoader(opts.configRoot)

	if !opts.all {
		start := time.Now()
		c, err := loader.Load(ctx, opts.ide, opts.language)
		if err != nil {
			return nil, err
		}
		res, err := b.Build(ctx, c, bundler.Options{IDE: opts.ide, Language: opts.language, Package: opts.pkg})
		if err != nil {
			return nil, err
		}
		out := &result.Output{OutputDir: b.Config().OutputDir()}
		out.Add(res)
		out.TotalDuration = time.Since(start)
		return out, nil
	}

	targets, err := discoverTargets(loader, opts.ide)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"no collections found", map[string]any{"path": loader.Root()}).
			WithHint("add collection files as {config-root}/{ide}/{language}.yaml")
	}

	slog.Info("building packs", "count", len(targets), "parallel", opts.parallel)
	return b.BuildAll(ctx, loader, targets, opts.parallel, opts.pkg)
}

// discoverTargets lists every (ide, language) pair under the loader root,
// restricted to ide when it is set.
func discoverTargets(loader *collection.Loader, ide string) ([]bundler.Target, error) {
	ides := []string{ide}
	if ide == "" {
		var err error
		if ides, err = loader.ListIDEs(); err != nil {
			return nil, err
		}
	}

	var targets []bundler.Target
	for _, i := range ides {
		langs, err := loader.ListAvailable(i)
		if err != nil {
			return nil, err
		}
		for _, l := range langs {
			targets = append(targets, bundler.Target{IDE: i, Language: l})
		}
	}
	return targets, nil
}
