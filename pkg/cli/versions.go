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
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/bundler"
	"github.com/extpack/extpack/pkg/defaults"
	"github.com/extpack/extpack/pkg/errors"
	ver "github.com/extpack/extpack/pkg/version"
	"github.com/extpack/extpack/pkg/versionstore"
)

func outDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out-dir",
		Value:   defaults.OutputDir,
		Sources: cli.EnvVars("EXTPACK_OUTPUT"),
		Usage:   "Root directory of generated pack sources",
	}
}

// requireTarget returns --ide and --language, failing when either is empty.
func requireTarget(cmd *cli.Command) (string, string, error) {
	ide, language := cmd.String("ide"), cmd.String("language")
	if ide == "" || language == "" {
		return "", "", fmt.Errorf("--ide and --language are required")
	}
	return ide, language, nil
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Inspect and change stored pack versions",
		Description: `Pack versions are kept in a versions file (default: versions.json) and
written into generated package.json files, where "extpack build" preserves
them on the next run.

# Examples

  extpack version list
  extpack version bump --ide vscode --language python --part minor
  extpack version set --ide vscode --language python --to 2.0.0
  extpack version sync`,
		Commands: []*cli.Command{
			versionListCmd(),
			versionGetCmd(),
			versionSetCmd(),
			versionBumpCmd(),
			versionSyncCmd(),
		},
	}
}

func versionListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored versions",
		Flags: []cli.Flag{versionFileFlag(), outputFlag(), formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			store, err := versionstore.Open(cmd.String("versions"))
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, format, store.Entries())
		},
	}
}

func versionGetCmd() *cli.Command {
	return &cli.Command{
		Name:  "get",
		Usage: "Show the version of one pack",
		Description: `Prints the stored version, or the version in the generated package.json
when none is stored.`,
		Flags: []cli.Flag{ideFlag(), languageFlag(), versionFileFlag(), outDirFlag(), outputFlag(), formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			ide, language, err := requireTarget(cmd)
			if err != nil {
				return err
			}
			store, err := versionstore.Open(cmd.String("versions"))
			if err != nil {
				return err
			}

			v, ok := store.Get(ide, language)
			if !ok {
				v = bundler.ResolveVersion(filepath.Join(cmd.String("out-dir"), ide, language), defaults.FloorVersion)
			}
			return writeResult(ctx, cmd, format,
				versionstore.Entries{{IDE: ide, Language: language, Version: v}})
		},
	}
}

func versionSetCmd() *cli.Command {
	return &cli.Command{
		Name:  "set",
		Usage: "Store an explicit version for one pack",
		Flags: []cli.Flag{
			ideFlag(),
			languageFlag(),
			&cli.StringFlag{
				Name:     "to",
				Required: true,
				Usage:    "Semantic version to store (e.g., 1.2.3)",
			},
			versionFileFlag(),
			outDirFlag(),
			&cli.BoolFlag{
				Name:  "sync",
				Value: true,
				Usage: "Write the version into the generated package.json",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			ide, language, err := requireTarget(cmd)
			if err != nil {
				return err
			}
			store, err := versionstore.Open(cmd.String("versions"))
			if err != nil {
				return err
			}
			if err := store.Set(ide, language, cmd.String("to")); err != nil {
				return err
			}
			return saveAndSync(cmd, store, ide, language)
		},
	}
}

func versionBumpCmd() *cli.Command {
	return &cli.Command{
		Name:  "bump",
		Usage: "Increment the version of one pack",
		Description: `Increments the stored version. When no version is stored yet the version
in the generated package.json (or the floor version) is bumped.`,
		Flags: []cli.Flag{
			ideFlag(),
			languageFlag(),
			&cli.StringFlag{
				Name:  "part",
				Value: string(ver.PartPatch),
				Usage: fmt.Sprintf("Version part to increment (supported values: %s, %s, %s)",
					ver.PartMajor, ver.PartMinor, ver.PartPatch),
			},
			versionFileFlag(),
			outDirFlag(),
			&cli.BoolFlag{
				Name:  "sync",
				Value: true,
				Usage: "Write the new version into the generated package.json",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			ide, language, err := requireTarget(cmd)
			if err != nil {
				return err
			}
			store, err := versionstore.Open(cmd.String("versions"))
			if err != nil {
				return err
			}

			base := bundler.ResolveVersion(filepath.Join(cmd.String("out-dir"), ide, language), defaults.FloorVersion)
			next, err := store.Bump(ide, language, ver.Part(cmd.String("part")), base)
			if err != nil {
				return err
			}
			slog.Info("version bumped", "ide", ide, "language", language, "version", next)
			return saveAndSync(cmd, store, ide, language)
		},
	}
}

func versionSyncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Write stored versions into generated package.json files",
		Flags: []cli.Flag{ideFlag(), languageFlag(), versionFileFlag(), outDirFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			store, err := versionstore.Open(cmd.String("versions"))
			if err != nil {
				return err
			}

			ide, language := cmd.String("ide"), cmd.String("language")
			outDir := cmd.String("out-dir")
			synced := 0
			for _, e := range store.Entries() {
				if (ide != "" && e.IDE != ide) || (language != "" && e.Language != language) {
					continue
				}
				changed, err := store.Sync(e.IDE, e.Language, filepath.Join(outDir, e.IDE, e.Language))
				if err != nil {
					return err
				}
				if changed {
					synced++
				}
			}
			slog.Info("versions synced", "updated", synced)
			return nil
		},
	}
}

// saveAndSync persists the store and, unless --sync=false, writes the
// stored version into the generated manifest.
func saveAndSync(cmd *cli.Command, store *versionstore.Store, ide, language string) error {
	if err := store.Save(); err != nil {
		return err
	}
	if !cmd.Bool("sync") {
		return nil
	}

	dir := filepath.Join(cmd.String("out-dir"), ide, language)
	changed, err := store.Sync(ide, language, dir)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeConfiguration,
			"version stored but package.json could not be updated", err,
			map[string]any{"path": dir}).
			WithHint("rerun: extpack version sync")
	}
	slog.Debug("manifest sync", "path", dir, "changed", changed)
	return nil
}
