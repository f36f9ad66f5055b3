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
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/extpack/extpack/pkg/bundler/result"
	"github.com/extpack/extpack/pkg/collection"
	"github.com/extpack/extpack/pkg/defaults"
)

// Source loads the collection for (ide, language). *collection.Loader
// implements it.
type Source interface {
	Load(ctx context.Context, ide, language string) (*collection.Collection, error)
}

// Target is one (ide, language) pair to build.
type Target struct {
	IDE      string
	Language string
}

// BuildAll loads and builds every target, at most limit at a time (the
// default when limit <= 0). A failed target is recorded in the output and
// does not stop the others. The returned error is non-nil only when ctx is
// cancelled.
func (b *Builder) BuildAll(ctx context.Context, src Source, targets []Target, limit int, pkg bool) (*result.Output, error) {
	start := time.Now()
	if limit <= 0 {
		limit = defaults.MaxParallelBuilds
	}

	out := &result.Output{
		Results:   make([]*result.BuildResult, 0, len(targets)),
		Errors:    make([]result.BuildError, 0),
		OutputDir: b.cfg.OutputDir(),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := b.buildTarget(gctx, src, t, pkg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.AddError(t.IDE, t.Language, err)
				return nil
			}
			out.Add(res)
			return nil
		})
	}

	err := g.Wait()

	out.Sort()
	out.TotalDuration = time.Since(start)
	return out, err
}

func (b *Builder) buildTarget(ctx context.Context, src Source, t Target, pkg bool) (*result.BuildResult, error) {
	c, err := src.Load(ctx, t.IDE, t.Language)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, c, Options{IDE: t.IDE, Language: t.Language, Package: pkg})
}
