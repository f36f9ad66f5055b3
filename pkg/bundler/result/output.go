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

package result

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Output aggregates the results of building several packs in one run.
type Output struct {
	// Results contains the successful builds.
	Results []*BuildResult `json:"results" yaml:"results"`

	// TotalSize is the total size in bytes of all generated files.
	TotalSize int64 `json:"total_size_bytes" yaml:"total_size_bytes"`

	// TotalFiles is the total count of generated files.
	TotalFiles int `json:"total_files" yaml:"total_files"`

	// TotalDuration is the wall time of the whole run.
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`

	// Errors contains failed builds.
	Errors []BuildError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// OutputDir is the root the packs were generated under.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// BuildError records a failed build.
type BuildError struct {
	IDE      string `json:"ide" yaml:"ide"`
	Language string `json:"language" yaml:"language"`
	Error    string `json:"error" yaml:"error"`
}

// Add records a successful build.
func (o *Output) Add(r *BuildResult) {
	o.Results = append(o.Results, r)
	o.TotalFiles += len(r.Files)
	o.TotalSize += r.Size
}

// AddError records a failed build.
func (o *Output) AddError(ide, language string, err error) {
	o.Errors = append(o.Errors, BuildError{IDE: ide, Language: language, Error: err.Error()})
}

// Sort orders results and errors by (ide, language) so concurrent runs
// report deterministically.
func (o *Output) Sort() {
	sort.Slice(o.Results, func(i, j int) bool {
		a, b := o.Results[i].Metadata, o.Results[j].Metadata
		if a.IDE != b.IDE {
			return a.IDE < b.IDE
		}
		return a.Language < b.Language
	})
	sort.Slice(o.Errors, func(i, j int) bool {
		if o.Errors[i].IDE != o.Errors[j].IDE {
			return o.Errors[i].IDE < o.Errors[j].IDE
		}
		return o.Errors[i].Language < o.Errors[j].Language
	})
}

// HasErrors returns true if any build failed.
func (o *Output) HasErrors() bool {
	return len(o.Errors) > 0
}

// Summary returns a human-readable summary of the run.
func (o *Output) Summary() string {
	return fmt.Sprintf(
		"Generated %d files (%s) in %v. Success: %d/%d packs.",
		o.TotalFiles,
		formatBytes(o.TotalSize),
		o.TotalDuration.Round(time.Millisecond),
		len(o.Results),
		len(o.Results)+len(o.Errors),
	)
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// TableHeader implements serializer.Tabular.
func (o *Output) TableHeader() []string {
	return []string{"IDE", "LANGUAGE", "VERSION", "FILES", "ARTIFACT", "STATUS"}
}

// TableRows implements serializer.Tabular. Failed builds follow successful ones.
func (o *Output) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Results)+len(o.Errors))
	for _, r := range o.Results {
		artifact := r.ArtifactPath
		if artifact == "" {
			artifact = "-"
		}
		rows = append(rows, []string{
			r.Metadata.IDE,
			r.Metadata.Language,
			r.Metadata.Version,
			strconv.Itoa(len(r.Files)),
			artifact,
			"ok",
		})
	}
	for _, e := range o.Errors {
		rows = append(rows, []string{e.IDE, e.Language, "-", "0", "-", "error: " + e.Error})
	}
	return rows
}
