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

// Package collection defines the declarative description of an extension
// pack and loads it from disk.
//
// A collection source lives at {root}/{ide}/{language} with one of the
// suffixes .yaml, .yml, .json, or .cue. Its top-level keys are exports; the
// loader takes the first of "default", the language identifier, or the
// language's camelCase form:
//
//	default:
//	  description: Python development essentials
//	  tags: [python, linting]
//	  requiredExtensions:
//	    - id: ms-python.python
//	      name: Python
//	      description: Language support
//	      publisher: Microsoft
//	      license: MIT
//	  documentation:
//	    setup: Install Python 3.12.
//	    troubleshooting: Select an interpreter.
//
// Loaded collections are validated, cached per (ide, language), and shared;
// callers must not mutate them.
//
//	loader := collection.NewLoader("collections")
//	c, err := loader.Load(ctx, "vscode", "python")
//
// Validate reports every schema violation as "path: message" and never
// panics:
//
//	res := collection.Validate(doc)
//	for _, e := range res.Errors {
//	    fmt.Println(e) // requiredExtensions[0].id: "x" must match format ...
//	}
package collection
