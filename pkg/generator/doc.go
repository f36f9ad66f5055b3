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

// Package generator renders extension pack files from text/template sources.
//
// The default templates are embedded in the binary; WithTemplateFS or
// WithTemplateDir substitute another root. Each template is compiled on first
// use and cached until ClearCache. Execution is strict: a reference to a
// missing field or map key fails the render.
//
// Template helpers:
//
//   - json: indented JSON with sorted map keys, no HTML escaping
//   - jsonAt: json for a value nested N indentation levels deep
//   - capitalize: title-cases each word
//   - publisherOf: publisher segment of a "publisher.name" identifier
//   - indent: prefixes every line with N spaces
//   - join: strings.Join
//
// Usage:
//
//	g := generator.New()
//	err := g.RenderToFile("package.json", ctx, filepath.Join(dir, "package.json"))
package generator
