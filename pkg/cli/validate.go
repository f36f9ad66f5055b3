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
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/extpack/extpack/pkg/bundler"
	"github.com/extpack/extpack/pkg/collection"
	"github.com/extpack/extpack/pkg/errors"
)

// validationReport is the validate outcome for one collection.
type validationReport struct {
	IDE      string   `json:"ide" yaml:"ide"`
	Language string   `json:"language" yaml:"language"`
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type validationReports []validationReport

func (r validationReports) TableHeader() []string {
	return []string{"IDE", "LANGUAGE", "VALID", "ERRORS"}
}

func (r validationReports) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, v := range r {
		rows = append(rows, []string{v.IDE, v.Language, strconv.FormatBool(v.Valid), strings.Join(v.Errors, "; ")})
	}
	return rows
}

func (r validationReports) failed() int {
	n := 0
	for _, v := range r {
		if !v.Valid {
			n++
		}
	}
	return n
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate collections against the collection schema",
		Description: `Loads collections and reports every schema violation as "path: message".

Checks include:
  - at least one required extension
  - extension ids of the form publisher.extension-name
  - absolute marketplace URLs
  - setting scopes of user or workspace
  - non-empty snippet bodies and documentation

Without --ide and --language every collection is validated.

# Examples

  extpack validate
  extpack validate --ide vscode --language python
  extpack validate --format json --output report.json`,
		Flags: []cli.Flag{
			ideFlag(),
			languageFlag(),
			configRootFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			ide, language := cmd.String("ide"), cmd.String("language")
			loader := collection.NewLoader(cmd.String("config-root"))

			var targets []bundler.Target
			if ide != "" && language != "" {
				targets = []bundler.Target{{IDE: ide, Language: language}}
			} else if language != "" {
				return fmt.Errorf("--language requires --ide")
			} else if targets, err = discoverTargets(loader, ide); err != nil {
				return err
			}

			reports := make(validationReports, 0, len(targets))
			for _, t := range targets {
				reports = append(reports, validateTarget(ctx, loader, t))
			}

			if err := writeResult(ctx, cmd, format, reports); err != nil {
				return err
			}

			if n := reports.failed(); n > 0 {
				return errors.New(errors.ErrCodeValidation,
					fmt.Sprintf("%d of %d collections are invalid", n, len(reports)))
			}
			return nil
		},
	}
}

// validateTarget loads one collection. Schema violations are unpacked from
// the VALIDATION error context; other load failures are reported as a
// single message.
func validateTarget(ctx context.Context, loader *collection.Loader, t bundler.Target) validationReport {
	report := validationReport{IDE: t.IDE, Language: t.Language}

	_, err := loader.Load(ctx, t.IDE, t.Language)
	if err == nil {
		report.Valid = true
		return report
	}

	slog.Debug("collection invalid", "ide", t.IDE, "language", t.Language, "error", err)
	if se, ok := errors.As(err); ok && se.Code == errors.ErrCodeValidation {
		if violations, ok := se.Context["errors"].([]string); ok {
			report.Errors = violations
			return report
		}
	}
	report.Errors = []string{err.Error()}
	return report
}
