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

// Package vsix packages generated extension directories into VSIX archives
// and reads manifests back out of them.
//
// Archives are reproducible: entries are sorted and stamped with a fixed
// modification time. The layout follows the editor's package format:
//
//	[Content_Types].xml
//	extension.vsixmanifest
//	extension/package.json
//	extension/README.md
//	...
//
// Files matched by the package's .vscodeignore (gitignore-like globs with
// "**" and "!" re-includes) are skipped.
package vsix
