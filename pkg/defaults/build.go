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

package defaults

// Build defaults for generated extension packs.
const (
	// FloorVersion is used when no prior package manifest version can be read.
	FloorVersion = "1.0.0"

	// PackLicense is the license declared by generated packs.
	PackLicense = "MIT"

	// EngineRange is the minimum editor engine declared in package manifests.
	EngineRange = "^1.80.0"

	// OutputDir is the default root for generated package directories.
	OutputDir = "packages"

	// DistDir is the default root for packaged artifacts.
	DistDir = "dist"

	// ConfigRoot is the default root of collection sources.
	ConfigRoot = "collections"

	// AssetsDir is the default root of icon assets.
	AssetsDir = "assets"

	// VersionStoreFile is the default version store location.
	VersionStoreFile = "versions.json"

	// MaxParallelBuilds bounds concurrent builds for build --all.
	MaxParallelBuilds = 4
)
