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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/defaults"
	"github.com/extpack/extpack/pkg/serializer"
)

// Flags shared by several commands. Each call returns a fresh flag because
// urfave flags keep their parsed value.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the command result to this file (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatTable),
		Usage:   fmt.Sprintf("Result format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func configRootFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config-root",
		Aliases: []string{"c"},
		Value:   defaults.ConfigRoot,
		Sources: cli.EnvVars("EXTPACK_CONFIG_ROOT"),
		Usage:   "Directory holding {ide}/{language} collection files",
	}
}

func ideFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "ide",
		Aliases: []string{"i"},
		Sources: cli.EnvVars("EXTPACK_IDE"),
		Usage:   "Target IDE identifier (e.g., vscode, cursor)",
	}
}

func languageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "language",
		Aliases: []string{"l"},
		Sources: cli.EnvVars("EXTPACK_LANGUAGE"),
		Usage:   "Target language identifier (e.g., python, typescript)",
	}
}

func versionFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "versions",
		Value:   defaults.VersionStoreFile,
		Sources: cli.EnvVars("EXTPACK_VERSIONS"),
		Usage:   "Path to the stored pack versions file",
	}
}

// parseOutputFormat returns the --format value, rejecting unknown formats.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported values: %s)",
			f, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// writeResult serializes v to --output (or stdout) in format.
func writeResult(ctx context.Context, cmd *cli.Command, format serializer.Format, v any) error {
	ser := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()
	return ser.Serialize(ctx, v)
}
