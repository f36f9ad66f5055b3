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

// Package defaults provides centralized configuration constants for extpack.
//
// This package defines transport timeouts, registry pacing, and build
// defaults used across the codebase.
//
// # Categories
//
//   - HTTP transport timeouts: for outbound registry requests
//   - Registry pacing: rate limits applied by the publisher's HTTP client
//   - CLI timeouts: upper bounds for whole commands
//   - Build defaults: floor version, directory layout, pack license
//
// # Usage
//
//	import "github.com/extpack/extpack/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CLIPublishTimeout)
//	defer cancel()
package defaults
