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

package generator

import (
	"sort"

	"github.com/extpack/extpack/pkg/collection"
)

// TemplateContext is the data every pack template renders against. It is
// assembled by the builder from a collection and the build options.
type TemplateContext struct {
	IDE                 string
	IDEDisplayName      string
	Language            string
	LanguageDisplayName string

	// Name is the package identifier, DisplayName its human-readable title.
	Name        string
	DisplayName string
	Description string
	Version     string

	Organization  string
	Publisher     string
	RepositoryURL string
	License       string
	EngineRange   string

	ConfigFingerprint string
	GeneratedDate     string
	Year              int

	Tags               []string
	RequiredExtensions []collection.Extension
	OptionalExtensions []collection.Extension
	Settings           []SettingEntry
	Keybindings        []collection.Keybinding
	Snippets           []collection.Snippet
	Documentation      collection.Documentation
}

// SettingEntry is a named setting, ordered by Key in the context.
type SettingEntry struct {
	Key string
	collection.Setting
}

// SettingEntries flattens a settings map into entries sorted by key.
func SettingEntries(settings map[string]collection.Setting) []SettingEntry {
	entries := make([]SettingEntry, 0, len(settings))
	for k, s := range settings {
		entries = append(entries, SettingEntry{Key: k, Setting: s})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// ExtensionID returns "publisher.name" for the generated pack.
func (c TemplateContext) ExtensionID() string {
	return c.Publisher + "." + c.Name
}

// HasSettings reports whether the pack contributes settings.
func (c TemplateContext) HasSettings() bool { return len(c.Settings) > 0 }

// HasKeybindings reports whether the pack contributes keybindings.
func (c TemplateContext) HasKeybindings() bool { return len(c.Keybindings) > 0 }

// HasSnippets reports whether the pack contributes snippets.
func (c TemplateContext) HasSnippets() bool { return len(c.Snippets) > 0 }

// SnippetPath is the snippet file location relative to the package root.
func (c TemplateContext) SnippetPath() string {
	return "snippets/" + c.Language + ".json"
}

// Keywords returns the tags as a non-nil list.
func (c TemplateContext) Keywords() []string {
	if c.Tags == nil {
		return []string{}
	}
	return c.Tags
}

// ExtensionPack lists the identifiers of the required extensions.
func (c TemplateContext) ExtensionPack() []string {
	ids := make([]string, 0, len(c.RequiredExtensions))
	for _, e := range c.RequiredExtensions {
		ids = append(ids, e.ID)
	}
	return ids
}

// SettingValues maps setting keys to their values, the shape of an editor
// settings file.
func (c TemplateContext) SettingValues() map[string]any {
	values := make(map[string]any, len(c.Settings))
	for _, s := range c.Settings {
		values[s.Key] = s.Value
	}
	return values
}

// KeybindingEntry is one element of an editor keybindings file.
type KeybindingEntry struct {
	Key     string `json:"key"`
	Command string `json:"command"`
	When    string `json:"when,omitempty"`
}

// KeybindingEntries returns the keybindings in editor file shape.
func (c TemplateContext) KeybindingEntries() []KeybindingEntry {
	entries := make([]KeybindingEntry, 0, len(c.Keybindings))
	for _, k := range c.Keybindings {
		entries = append(entries, KeybindingEntry{Key: k.Key, Command: k.Command, When: k.When})
	}
	return entries
}

// SnippetEntry is one element of an editor snippet file.
type SnippetEntry struct {
	Prefix      string `json:"prefix"`
	Body        any    `json:"body"`
	Description string `json:"description,omitempty"`
}

// SnippetEntries returns the snippets keyed by name in editor file shape.
func (c TemplateContext) SnippetEntries() map[string]SnippetEntry {
	entries := make(map[string]SnippetEntry, len(c.Snippets))
	for _, s := range c.Snippets {
		entries[s.Name] = SnippetEntry{Prefix: s.Prefix, Body: s.Body.Value(), Description: s.Description}
	}
	return entries
}

// Contributes returns the manifest "contributes" section.
func (c TemplateContext) Contributes() map[string]any {
	contributes := make(map[string]any)
	if c.HasSettings() {
		props := make(map[string]any, len(c.Settings))
		for _, s := range c.Settings {
			prop := map[string]any{
				"default": s.Value,
				"scope":   manifestScope(s.Scope),
			}
			if s.Description != "" {
				prop["description"] = s.Description
			}
			props[s.Key] = prop
		}
		contributes["configuration"] = map[string]any{
			"title":      c.DisplayName,
			"properties": props,
		}
	}
	if c.HasKeybindings() {
		contributes["keybindings"] = c.KeybindingEntries()
	}
	if c.HasSnippets() {
		contributes["snippets"] = []map[string]string{{
			"language": c.Language,
			"path":     "./" + c.SnippetPath(),
		}}
	}
	return contributes
}

// manifestScope maps collection scopes onto editor configuration scopes.
func manifestScope(scope string) string {
	if scope == collection.ScopeWorkspace {
		return "resource"
	}
	return "window"
}
