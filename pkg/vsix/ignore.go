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

package vsix

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFile is the per-package exclusion list read by the packager.
const IgnoreFile = ".vscodeignore"

// defaultIgnore is applied before the package's own patterns.
var defaultIgnore = []string{
	IgnoreFile,
	"**/.git/**",
	"**/.DS_Store",
	"**/*.vsix",
	"**/*.vsixmanifest",
	"**/*.sha256",
}

type ignoreRule struct {
	negate bool
	re     *regexp.Regexp
}

// ignoreList matches slash-separated paths relative to the package root.
// Later rules win; a "!" prefix re-includes.
type ignoreList []ignoreRule

func loadIgnore(packageDir string) (ignoreList, error) {
	patterns := append([]string(nil), defaultIgnore...)
	data, err := os.ReadFile(filepath.Join(packageDir, IgnoreFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return compileIgnore(patterns), nil
}

func compileIgnore(patterns []string) ignoreList {
	rules := make(ignoreList, 0, len(patterns))
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		p = strings.TrimPrefix(strings.TrimPrefix(p, "./"), "/")
		p = strings.TrimSuffix(p, "/")
		rules = append(rules, ignoreRule{negate: negate, re: globToRegexp(p)})
	}
	return rules
}

func (l ignoreList) ignored(rel string) bool {
	out := false
	for _, r := range l {
		if r.re.MatchString(rel) {
			out = !r.negate
		}
	}
	return out
}

// globToRegexp translates a glob with "*", "?" and "**" into an anchored
// regular expression. A trailing "/**" also matches the directory contents
// at any depth, and a leading "**/" matches at any depth including the root.
func globToRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
