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

// Scope values accepted for a Setting.
const (
	ScopeUser      = "user"
	ScopeWorkspace = "workspace"
)

// Collection describes one extension pack for a single (ide, language) pair.
// Instances returned by a Loader are shared and must be treated as read-only.
type Collection struct {
	Description        string             `json:"description" yaml:"description"`
	Tags               []string           `json:"tags" yaml:"tags"`
	RequiredExtensions []Extension        `json:"requiredExtensions" yaml:"requiredExtensions"`
	OptionalExtensions []Extension        `json:"optionalExtensions,omitempty" yaml:"optionalExtensions,omitempty"`
	Settings           map[string]Setting `json:"settings,omitempty" yaml:"settings,omitempty"`
	Keybindings        []Keybinding       `json:"keybindings,omitempty" yaml:"keybindings,omitempty"`
	Snippets           []Snippet          `json:"snippets,omitempty" yaml:"snippets,omitempty"`
	Documentation      Documentation      `json:"documentation" yaml:"documentation"`
}

// Extension is a third-party extension bundled into the pack.
type Extension struct {
	// ID has the form "publisher.extension-name".
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	Publisher      string `json:"publisher" yaml:"publisher"`
	License        string `json:"license" yaml:"license"`
	MarketplaceURL string `json:"marketplaceUrl,omitempty" yaml:"marketplaceUrl,omitempty"`
	Why            string `json:"why,omitempty" yaml:"why,omitempty"`
}

// Setting is an editor setting contributed by the pack.
type Setting struct {
	Value       any    `json:"value" yaml:"value"`
	Scope       string `json:"scope" yaml:"scope"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Keybinding is a key chord contributed by the pack.
type Keybinding struct {
	Key         string `json:"key" yaml:"key"`
	Command     string `json:"command" yaml:"command"`
	When        string `json:"when,omitempty" yaml:"when,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Snippet is a code snippet contributed by the pack.
type Snippet struct {
	Name        string      `json:"name" yaml:"name"`
	Prefix      string      `json:"prefix" yaml:"prefix"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Body        SnippetBody `json:"body" yaml:"body"`
}

// Documentation holds the free-form guidance rendered into the README.
type Documentation struct {
	Setup           string `json:"setup" yaml:"setup"`
	Troubleshooting string `json:"troubleshooting" yaml:"troubleshooting"`
}
