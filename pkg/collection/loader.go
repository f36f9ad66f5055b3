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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/extpack/extpack/pkg/errors"
)

// Loader resolves, validates, and caches collections stored under a
// configuration root laid out as {root}/{ide}/{language}.{yaml|yml|json|cue}.
// A Loader is safe for concurrent use.
type Loader struct {
	root string

	mu    sync.RWMutex
	cache map[string]*Collection
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats describes the loader's cache.
type CacheStats struct {
	Size   int      `json:"size" yaml:"size"`
	Keys   []string `json:"keys" yaml:"keys"`
	Hits   int64    `json:"hits" yaml:"hits"`
	Misses int64    `json:"misses" yaml:"misses"`
}

// NewLoader returns a Loader reading collection sources from configRoot.
func NewLoader(configRoot string) *Loader {
	return &Loader{
		root:  configRoot,
		cache: make(map[string]*Collection),
	}
}

// Root returns the configuration root.
func (l *Loader) Root() string {
	return l.root
}

func cacheKey(ide, language string) string {
	return ide + "/" + language
}

// Load returns the validated collection for (ide, language). Results are
// cached for the loader's lifetime; a cached collection is returned without
// touching the filesystem.
func (l *Loader) Load(ctx context.Context, ide, language string) (*Collection, error) {
	if err := checkSegment("ide", ide); err != nil {
		return nil, err
	}
	if err := checkSegment("language", language); err != nil {
		return nil, err
	}

	key := cacheKey(ide, language)
	if c, ok := l.cached(key); ok {
		l.hits.Add(1)
		collectionCacheHits.Inc()
		slog.Debug("collection cache hit", "ide", ide, "language", language)
		return c, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "collection load canceled", err)
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if c, ok := l.cached(key); ok {
			return c, nil
		}
		l.misses.Add(1)
		collectionCacheMisses.Inc()

		start := time.Now()
		c, err := l.load(ide, language)
		if err != nil {
			return nil, err
		}
		collectionLoadDuration.Observe(time.Since(start).Seconds())

		l.mu.Lock()
		l.cache[key] = c
		l.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Collection), nil
}

func (l *Loader) cached(key string) (*Collection, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.cache[key]
	return c, ok
}

func (l *Loader) load(ide, language string) (*Collection, error) {
	path, data, err := l.readSource(ide, language)
	if err != nil {
		return nil, err
	}

	exports, err := decodeSource(path, data)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
			fmt.Sprintf("failed to parse collection source %s", path), err,
			map[string]any{"path": path, "ide": ide, "language": language})
	}

	names := ExportNames(language)
	var (
		candidate any
		export    string
	)
	for _, name := range names {
		if v, ok := exports[name]; ok {
			candidate, export = v, name
			break
		}
	}
	if export == "" {
		found := sortedKeys(exports)
		return nil, errors.NewWithContext(errors.ErrCodeConfiguration,
			fmt.Sprintf("collection source %s has no usable export (found: [%s])", path, strings.Join(found, ", ")),
			map[string]any{
				"path":     path,
				"ide":      ide,
				"language": language,
				"exports":  found,
			}).WithHint("export the collection as one of: " + strings.Join(names, ", "))
	}

	if err := ValidateOrError(candidate, ide, language); err != nil {
		if se, ok := errors.As(err); ok {
			se.Context["path"] = path
			se.Context["export"] = export
		}
		return nil, err
	}

	c, err := decodeCollection(candidate)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
			fmt.Sprintf("failed to decode collection from %s", path), err,
			map[string]any{"path": path, "export": export})
	}

	slog.Info("loaded collection",
		"ide", ide,
		"language", language,
		"path", path,
		"export", export,
		"required", len(c.RequiredExtensions),
		"optional", len(c.OptionalExtensions))
	return c, nil
}

func (l *Loader) readSource(ide, language string) (string, []byte, error) {
	base := filepath.Join(l.root, ide, language)
	attempted := make([]string, 0, len(SourceExtensions))
	for _, ext := range SourceExtensions {
		path := base + ext
		attempted = append(attempted, path)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
				fmt.Sprintf("failed to read collection source %s", path), err,
				map[string]any{"path": path})
		}
	}
	return "", nil, errors.NewWithContext(errors.ErrCodeConfiguration,
		fmt.Sprintf("no collection source for %s/%s (tried: %s)", ide, language, strings.Join(attempted, ", ")),
		map[string]any{
			"ide":       ide,
			"language":  language,
			"attempted": attempted,
		}).WithHint(fmt.Sprintf("create %s with a %q export", attempted[0], DefaultExport))
}

func decodeCollection(candidate any) (*Collection, error) {
	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, err
	}
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAvailable returns the sorted language identifiers that have a source
// file directly under the ide's directory.
func (l *Loader) ListAvailable(ide string) ([]string, error) {
	if err := checkSegment("ide", ide); err != nil {
		return nil, err
	}
	dir := filepath.Join(l.root, ide)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
			fmt.Sprintf("failed to list collections in %s", dir), err,
			map[string]any{"path": dir, "ide": ide})
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !isSourceFile(e.Name()) {
			continue
		}
		seen[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = true
	}
	return sortedKeys(seen), nil
}

// ListIDEs returns the sorted ide identifiers, one per directory under the
// configuration root.
func (l *Loader) ListIDEs() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConfiguration,
			fmt.Sprintf("failed to list ides in %s", l.root), err,
			map[string]any{"path": l.root})
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			seen[e.Name()] = true
		}
	}
	return sortedKeys(seen), nil
}

// ClearCache drops every cached collection.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*Collection)
}

// CacheStats returns the current cache size, sorted keys, and hit counters.
func (l *Loader) CacheStats() CacheStats {
	l.mu.RLock()
	keys := make([]string, 0, len(l.cache))
	for k := range l.cache {
		keys = append(keys, k)
	}
	l.mu.RUnlock()
	sort.Strings(keys)

	return CacheStats{
		Size:   len(keys),
		Keys:   keys,
		Hits:   l.hits.Load(),
		Misses: l.misses.Load(),
	}
}

func checkSegment(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(errors.ErrCodeInvalidRequest, name+" is required")
	}
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s %q must be a single path segment", name, value),
			map[string]any{name: value})
	}
	return nil
}
