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

// Package config provides configuration options for the extension pack builder.
//
// This package defines the configuration structure and functional options
// pattern shared by every build a Builder performs.
//
// # Configuration Options
//
//   - OutputDir: root of generated package directories ({root}/{ide}/{language})
//   - DistDir: root of packaged artifacts ({root}/{ide}/*.vsix)
//   - AssetsDir: root searched for icons
//   - Organization, Publisher, RepositoryURL, License: manifest identity
//   - EngineRange: declared editor engine
//   - FloorVersion: version used when none can be recovered
//   - IncludeChecksums: write a .sha256 file next to artifacts
//
// # Usage
//
//	cfg := config.NewConfig(
//	    config.WithPublisher("acme"),
//	    config.WithOutputDir("packages"),
//	)
//
// # Defaults
//
//   - OutputDir: "packages"
//   - DistDir: "dist"
//   - AssetsDir: "assets"
//   - License: "MIT"
//   - FloorVersion: "1.0.0"
//   - IncludeChecksums: true
//
// Config is immutable after creation, safe for concurrent use.
package config
