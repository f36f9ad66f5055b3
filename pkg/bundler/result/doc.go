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

// Package result provides types for reporting extension pack builds.
//
// # Core Types
//
// BuildResult describes one generated pack: its directory, generated files,
// optional packaged artifact, and identifying metadata (version, config
// fingerprint, build ID).
//
//	r := result.New("vscode", "python")
//	r.AddFile(path, size)
//	r.SetArtifact(vsixPath, checksum)
//
// Output aggregates several builds from one run:
//
//	out := &result.Output{OutputDir: "packages"}
//	out.Add(r)
//	out.AddError("vscode", "rust", err)
//	fmt.Println(out.Summary())
//	// Generated 8 files (12.4 KB) in 41ms. Success: 1/2 packs.
package result
