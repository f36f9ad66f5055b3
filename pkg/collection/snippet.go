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

package collection

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SnippetBody is the text of a snippet. Sources may give it as a single
// string or as a list of lines; both decode to Lines.
type SnippetBody struct {
	Lines []string
	// multiline records whether the source used the list form.
	multiline bool
}

// NewSnippetBody returns a body in list form.
func NewSnippetBody(lines ...string) SnippetBody {
	return SnippetBody{Lines: lines, multiline: true}
}

// Value returns the body in the shape editors expect: a string for
// single-string bodies and a list otherwise.
func (b SnippetBody) Value() any {
	if !b.multiline && len(b.Lines) == 1 {
		return b.Lines[0]
	}
	return b.Lines
}

// MarshalJSON implements json.Marshaler.
func (b SnippetBody) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Value())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *SnippetBody) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = SnippetBody{Lines: []string{s}}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("snippet body must be a string or a list of strings: %w", err)
	}
	*b = SnippetBody{Lines: lines, multiline: true}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b SnippetBody) MarshalYAML() (any, error) {
	return b.Value(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *SnippetBody) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*b = SnippetBody{Lines: []string{node.Value}}
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := node.Decode(&lines); err != nil {
			return err
		}
		*b = SnippetBody{Lines: lines, multiline: true}
		return nil
	default:
		return fmt.Errorf("snippet body must be a string or a list of strings")
	}
}
