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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extpack/extpack/pkg/errors"
)

const iconFile = "icon.png"

// assetResolver names one candidate icon location.
type assetResolver func(assetsDir, ide, language string) string

// iconResolvers are tried in order; the first existing file wins.
var iconResolvers = []assetResolver{
	func(dir, ide, lang string) string { return filepath.Join(dir, ide, lang+".png") },
	func(dir, _, lang string) string { return filepath.Join(dir, lang+".png") },
	func(dir, _, _ string) string { return filepath.Join(dir, iconFile) },
}

// resolveIcon returns the first icon candidate that exists. A pack without
// an icon cannot be built.
func resolveIcon(assetsDir, ide, language string) (string, error) {
	candidates := make([]string, 0, len(iconResolvers))
	for _, resolve := range iconResolvers {
		p := resolve(assetsDir, ide, language)
		candidates = append(candidates, p)
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}

	return "", errors.NewWithContext(errors.ErrCodeBuild,
		fmt.Sprintf("no icon found for %s/%s", ide, language),
		map[string]any{"candidates": candidates},
	).WithHint("add one of: " + strings.Join(candidates, ", "))
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
