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

// Package serializer writes command results in the formats the CLI offers.
//
// The package supports three output formats:
//   - JSON: machine-readable structured data with indentation
//   - YAML: human-readable structured data
//   - Table: aligned columns for values implementing Tabular, flattened
//     FIELD/VALUE pairs for anything else
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatTable, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, output); err != nil {
//		return err
//	}
package serializer

import "context"

// Serializer writes a value in some format.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by serializers holding resources such as files.
type Closer interface {
	Close() error
}

// Tabular is implemented by values with a natural column layout. Table
// output renders them as one row per record instead of flattened fields.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}
