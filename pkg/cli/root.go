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
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/logging"
)

const (
	name           = "extpack"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes returned by Execute.
const (
	exitError    = 1
	exitCanceled = 2
)

// newRootCmd returns the root command with every subcommand attached.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		EnableShellCompletion: true,
		Usage:                 "Build and publish IDE extension packs from curated collections",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `extpack turns per-IDE, per-language collection files into installable
extension packs and publishes them to extension registries.

  build    - generate pack sources and optionally package them as .vsix archives
  list     - list available collections
  validate - check collections against the collection schema
  publish  - upload a packaged archive to Open VSX, the VS Marketplace or an OCI registry
  version  - inspect and bump the stored pack versions`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars(logging.EnvLogLevel),
				Usage:   "Log level (debug, info, warn, error)",
			},
		},
		// The logger is configured after flags are parsed so that --log-level
		// takes effect before any command executes.
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.String("log-level")
			logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", logLevel)
			return ctx, nil
		},
		Commands: []*cli.Command{
			buildCmd(),
			listCmd(),
			validateCmd(),
			publishCmd(),
			versionCmd(),
		},
	}
}

// Execute runs the CLI with os.Args. It is called by main.main().
func Execute() {
	// SIGINT/SIGTERM cancel the context so in-flight builds and uploads stop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return exitCanceled
	}
	return exitError
}
