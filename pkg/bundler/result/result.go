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
	"time"
)

// BuildResult describes one generated extension pack.
type BuildResult struct {
	// PackageDir is the directory holding the generated sources.
	PackageDir string `json:"package_dir" yaml:"package_dir"`

	// Files lists every generated file, in generation order.
	Files []string `json:"files" yaml:"files"`

	// Size is the total size in bytes of the generated files.
	Size int64 `json:"size_bytes" yaml:"size_bytes"`

	// ArtifactPath is the packaged archive, empty when packaging was not requested.
	ArtifactPath string `json:"artifact_path,omitempty" yaml:"artifact_path,omitempty"`

	// ArtifactChecksum is the sha256 of the archive when one was written.
	ArtifactChecksum string `json:"artifact_checksum,omitempty" yaml:"artifact_checksum,omitempty"`

	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Metadata identifies a build.
type Metadata struct {
	BuildID           string        `json:"build_id" yaml:"build_id"`
	IDE               string        `json:"ide" yaml:"ide"`
	Language          string        `json:"language" yaml:"language"`
	ExtensionID       string        `json:"extension_id" yaml:"extension_id"`
	DisplayName       string        `json:"display_name" yaml:"display_name"`
	Version           string        `json:"version" yaml:"version"`
	ConfigFingerprint string        `json:"config_fingerprint" yaml:"config_fingerprint"`
	GeneratedAt       time.Time     `json:"generated_at" yaml:"generated_at"`
	Duration          time.Duration `json:"duration" yaml:"duration"`
}

// New creates an empty BuildResult for (ide, language).
func New(ide, language string) *BuildResult {
	return &BuildResult{
		Files: make([]string, 0),
		Metadata: Metadata{
			IDE:      ide,
			Language: language,
		},
	}
}

// AddFile records a generated file and its size.
func (r *BuildResult) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// SetArtifact records the packaged archive and its checksum.
func (r *BuildResult) SetArtifact(path, checksum string) {
	r.ArtifactPath = path
	r.ArtifactChecksum = checksum
}

// MarkComplete records the build duration.
func (r *BuildResult) MarkComplete(d time.Duration) {
	r.Metadata.Duration = d
}
