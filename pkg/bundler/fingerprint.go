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

package bundler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/extpack/extpack/pkg/collection"
)

// Fingerprint returns the sha256 of the collection's canonical JSON form.
// Tags, extension lists, keybindings and snippets are sorted first, so two
// collections that differ only in the order of those lists share a
// fingerprint. Empty and absent lists encode alike. Settings are keyed, and
// encoding/json sorts map keys.
func Fingerprint(c *collection.Collection) (string, error) {
	n, err := normalize(c)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalize(c *collection.Collection) (*collection.Collection, error) {
	n := *c

	n.Tags = nil
	if len(c.Tags) > 0 {
		n.Tags = slices.Clone(c.Tags)
		slices.Sort(n.Tags)
	}
	if len(c.Settings) == 0 {
		n.Settings = nil
	}

	var err error
	if n.RequiredExtensions, err = canonicalOrder(c.RequiredExtensions); err != nil {
		return nil, err
	}
	if n.OptionalExtensions, err = canonicalOrder(c.OptionalExtensions); err != nil {
		return nil, err
	}
	if n.Keybindings, err = canonicalOrder(c.Keybindings); err != nil {
		return nil, err
	}
	if n.Snippets, err = canonicalOrder(c.Snippets); err != nil {
		return nil, err
	}
	return &n, nil
}

// canonicalOrder returns a sorted copy of in, ordered by each element's JSON
// encoding, or nil when in is empty.
func canonicalOrder[T any](in []T) ([]T, error) {
	if len(in) == 0 {
		return nil, nil
	}
	type keyed struct {
		key  []byte
		item T
	}
	items := make([]keyed, len(in))
	for i, v := range in {
		key, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		items[i] = keyed{key: key, item: v}
	}
	slices.SortFunc(items, func(a, b keyed) int { return bytes.Compare(a.key, b.key) })

	out := make([]T, len(items))
	for i, k := range items {
		out[i] = k.item
	}
	return out, nil
}
