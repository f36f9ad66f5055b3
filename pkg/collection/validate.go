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
	"net/url"
	"regexp"
	"strings"

	"github.com/extpack/extpack/pkg/errors"
)

// extensionIDPattern accepts "publisher.extension-name": exactly one dot,
// both segments non-empty and free of whitespace.
var extensionIDPattern = regexp.MustCompile(`^[^.\s]+\.[^.\s]+$`)

const rootPath = "(root)"

// ValidationResult is the outcome of validating a candidate collection.
type ValidationResult struct {
	IsValid bool     `json:"isValid" yaml:"isValid"`
	Errors  []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Validate checks candidate against the collection schema and reports every
// violation as "path: message". It accepts decoded documents (map[string]any)
// as well as Collection values, and never panics on malformed input.
func Validate(candidate any) ValidationResult {
	doc, err := normalizeCandidate(candidate)
	if err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("%s: %v", rootPath, err)}}
	}

	v := &validator{}
	v.collection(doc)
	return ValidationResult{IsValid: len(v.errs) == 0, Errors: v.errs}
}

// ValidateOrError validates candidate and returns a VALIDATION error carrying
// every violation when it does not conform.
func ValidateOrError(candidate any, ide, language string) error {
	res := Validate(candidate)
	if res.IsValid {
		return nil
	}
	return errors.NewWithContext(errors.ErrCodeValidation,
		fmt.Sprintf("collection %s/%s is invalid: %s", ide, language, strings.Join(res.Errors, "; ")),
		map[string]any{
			"ide":      ide,
			"language": language,
			"errors":   res.Errors,
		})
}

func normalizeCandidate(candidate any) (any, error) {
	switch c := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("must be an object, got nothing")
	case *Collection:
		if c == nil {
			return nil, fmt.Errorf("must be an object, got nothing")
		}
		return roundTrip(c)
	case Collection:
		return roundTrip(&c)
	default:
		return candidate, nil
	}
}

// roundTrip converts a typed collection into the generic document form so
// that both inputs go through the same rules.
func roundTrip(c *Collection) (any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("cannot encode collection: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot decode collection: %w", err)
	}
	return doc, nil
}

type validator struct {
	errs []string
}

func (v *validator) add(path, format string, args ...any) {
	v.errs = append(v.errs, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) collection(doc any) {
	obj, ok := asObject(doc)
	if !ok {
		v.add(rootPath, "must be an object, got %s", kindOf(doc))
		return
	}

	v.requiredString(obj, "", "description")
	v.tags(obj)
	v.extensions(obj, "requiredExtensions", true)
	v.extensions(obj, "optionalExtensions", false)
	v.settings(obj)
	v.keybindings(obj)
	v.snippets(obj)
	v.documentation(obj)
}

func (v *validator) tags(obj map[string]any) {
	raw, present := obj["tags"]
	if !present || raw == nil {
		return
	}
	list, ok := raw.([]any)
	if !ok {
		v.add("tags", "must be a list of strings")
		return
	}
	for i, item := range list {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			v.add(fmt.Sprintf("tags[%d]", i), "must be a non-empty string")
		}
	}
}

func (v *validator) extensions(obj map[string]any, field string, required bool) {
	raw, present := obj[field]
	if !present || raw == nil {
		if required {
			v.add(field, "is required")
		}
		return
	}
	list, ok := raw.([]any)
	if !ok {
		v.add(field, "must be a list")
		return
	}
	if required && len(list) == 0 {
		v.add(field, "must contain at least one extension")
		return
	}
	for i, item := range list {
		v.extension(fmt.Sprintf("%s[%d]", field, i), item)
	}
}

func (v *validator) extension(path string, item any) {
	ext, ok := asObject(item)
	if !ok {
		v.add(path, "must be an object, got %s", kindOf(item))
		return
	}

	if id, ok := v.requiredString(ext, path, "id"); ok && !extensionIDPattern.MatchString(id) {
		v.add(join(path, "id"), "%q must match format 'publisher.extension-name'", id)
	}
	v.requiredString(ext, path, "name")
	v.requiredString(ext, path, "description")
	v.requiredString(ext, path, "publisher")
	v.requiredString(ext, path, "license")

	if raw, present := ext["marketplaceUrl"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok || !isAbsoluteURL(s) {
			v.add(join(path, "marketplaceUrl"), "must be an absolute URL")
		}
	}
	v.optionalString(ext, path, "why")
}

func (v *validator) settings(obj map[string]any) {
	raw, present := obj["settings"]
	if !present || raw == nil {
		return
	}
	settings, ok := asObject(raw)
	if !ok {
		v.add("settings", "must be an object keyed by setting name")
		return
	}
	for _, key := range sortedKeys(settings) {
		path := "settings." + key
		setting, ok := asObject(settings[key])
		if !ok {
			v.add(path, "must be an object, got %s", kindOf(settings[key]))
			continue
		}
		if _, present := setting["value"]; !present {
			v.add(join(path, "value"), "is required")
		}
		if scope, ok := v.requiredString(setting, path, "scope"); ok && scope != ScopeUser && scope != ScopeWorkspace {
			v.add(join(path, "scope"), "must be one of: %s, %s (got %q)", ScopeUser, ScopeWorkspace, scope)
		}
		v.optionalString(setting, path, "description")
	}
}

func (v *validator) keybindings(obj map[string]any) {
	list, ok := v.optionalList(obj, "keybindings")
	if !ok {
		return
	}
	for i, item := range list {
		path := fmt.Sprintf("keybindings[%d]", i)
		kb, ok := asObject(item)
		if !ok {
			v.add(path, "must be an object, got %s", kindOf(item))
			continue
		}
		v.requiredString(kb, path, "key")
		v.requiredString(kb, path, "command")
		v.optionalString(kb, path, "when")
		v.optionalString(kb, path, "description")
	}
}

func (v *validator) snippets(obj map[string]any) {
	list, ok := v.optionalList(obj, "snippets")
	if !ok {
		return
	}
	for i, item := range list {
		path := fmt.Sprintf("snippets[%d]", i)
		sn, ok := asObject(item)
		if !ok {
			v.add(path, "must be an object, got %s", kindOf(item))
			continue
		}
		v.requiredString(sn, path, "name")
		v.requiredString(sn, path, "prefix")
		v.optionalString(sn, path, "description")
		if !validSnippetBody(sn["body"]) {
			v.add(join(path, "body"), "must be a non-empty string or a non-empty list of strings")
		}
	}
}

func (v *validator) documentation(obj map[string]any) {
	raw, present := obj["documentation"]
	if !present || raw == nil {
		v.add("documentation", "is required")
		return
	}
	doc, ok := asObject(raw)
	if !ok {
		v.add("documentation", "must be an object, got %s", kindOf(raw))
		return
	}
	v.requiredString(doc, "documentation", "setup")
	v.requiredString(doc, "documentation", "troubleshooting")
}

// requiredString records at most one violation for field and returns its
// value when it is a non-empty string.
func (v *validator) requiredString(obj map[string]any, parent, field string) (string, bool) {
	path := join(parent, field)
	raw, present := obj[field]
	if !present || raw == nil {
		v.add(path, "is required")
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		v.add(path, "must be a string, got %s", kindOf(raw))
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		v.add(path, "must not be empty")
		return "", false
	}
	return s, true
}

func (v *validator) optionalString(obj map[string]any, parent, field string) {
	raw, present := obj[field]
	if !present || raw == nil {
		return
	}
	if _, ok := raw.(string); !ok {
		v.add(join(parent, field), "must be a string, got %s", kindOf(raw))
	}
}

func (v *validator) optionalList(obj map[string]any, field string) ([]any, bool) {
	raw, present := obj[field]
	if !present || raw == nil {
		return nil, false
	}
	list, ok := raw.([]any)
	if !ok {
		v.add(field, "must be a list, got %s", kindOf(raw))
		return nil, false
	}
	return list, true
}

func validSnippetBody(raw any) bool {
	switch b := raw.(type) {
	case string:
		return b != ""
	case []any:
		if len(b) == 0 {
			return false
		}
		for _, line := range b {
			if _, ok := line.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// asObject accepts both string-keyed maps and the any-keyed maps some
// decoders produce for mappings with non-string keys.
func asObject(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func kindOf(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any, map[any]any:
		return "object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}

func join(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}
