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
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/extpack/extpack/pkg/version"
)

// ResolveVersion returns the version recorded in the package.json already
// generated in packageDir. It returns floor when the file is missing,
// unreadable, not a JSON object, or its version is absent, not a string, or
// not a valid semantic version.
func ResolveVersion(packageDir, floor string) string {
	path := filepath.Join(packageDir, "package.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("existing manifest unreadable, using floor version",
				"path", path,
				"floor", floor,
				"error", err,
			)
		}
		return floor
	}

	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		slog.Warn("existing manifest malformed, using floor version",
			"path", path,
			"floor", floor,
			"error", err,
		)
		return floor
	}

	v, ok := manifest["version"].(string)
	if !ok || !version.IsValidString(v) {
		slog.Warn("existing manifest has no usable version, using floor version",
			"path", path,
			"floor", floor,
			"version", manifest["version"],
		)
		return floor
	}

	slog.Debug("version carried over", "path", path, "version", v)
	return v
}
