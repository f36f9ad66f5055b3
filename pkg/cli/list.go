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
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/bundler"
	"github.com/extpack/extpack/pkg/collection"
	"github.com/extpack/extpack/pkg/defaults"
)

// collectionInfo is one row of the list command.
type collectionInfo struct {
	IDE      string `json:"ide" yaml:"ide"`
	Language string `json:"language" yaml:"language"`
	Pack     string `json:"pack" yaml:"pack"`
	Version  string `json:"version" yaml:"version"`
}

type collectionList []collectionInfo

func (l collectionList) TableHeader() []string {
	return []string{"IDE", "LANGUAGE", "PACK", "VERSION"}
}

func (l collectionList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{c.IDE, c.Language, c.Pack, c.Version})
	}
	return rows
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:                  "list",
		EnableShellCompletion: true,
		Usage:                 "List available collections",
		Description: `Lists every collection under the configuration root together with the
version its generated pack currently carries (the floor version when the pack
has not been generated yet).

# Examples

  extpack list
  extpack list --ide vscode --format json`,
		Flags: []cli.Flag{
			ideFlag(),
			configRootFlag(),
			&cli.StringFlag{
				Name:    "out-dir",
				Value:   defaults.OutputDir,
				Sources: cli.EnvVars("EXTPACK_OUTPUT"),
				Usage:   "Root directory of generated pack sources",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			loader := collection.NewLoader(cmd.String("config-root"))
			targets, err := discoverTargets(loader, cmd.String("ide"))
			if err != nil {
				return err
			}

			outDir := cmd.String("out-dir")
			list := make(collectionList, 0, len(targets))
			for _, t := range targets {
				list = append(list, collectionInfo{
					IDE:      t.IDE,
					Language: t.Language,
					Pack:     bundler.PackName(t.IDE, t.Language),
					Version:  bundler.ResolveVersion(filepath.Join(outDir, t.IDE, t.Language), defaults.FloorVersion),
				})
			}

			return writeResult(ctx, cmd, format, list)
		},
	}
}
