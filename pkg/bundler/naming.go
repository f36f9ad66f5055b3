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
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ideDisplayNames = map[string]string{
	"vscode":   "VS Code",
	"vscodium": "VSCodium",
	"cursor":   "Cursor",
	"windsurf": "Windsurf",
}

// wordDisplayNames spells out words that title casing gets wrong.
var wordDisplayNames = map[string]string{
	"ai":         "AI",
	"api":        "API",
	"cpp":        "C++",
	"csharp":     "C#",
	"css":        "CSS",
	"devops":     "DevOps",
	"dotnet":     ".NET",
	"fsharp":     "F#",
	"graphql":    "GraphQL",
	"html":       "HTML",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"json":       "JSON",
	"k8s":        "Kubernetes",
	"ml":         "ML",
	"nodejs":     "Node.js",
	"php":        "PHP",
	"sql":        "SQL",
	"ts":         "TypeScript",
	"typescript": "TypeScript",
	"yaml":       "YAML",
}

// IDEDisplayName returns the product name for an ide identifier.
func IDEDisplayName(ide string) string {
	if name, ok := ideDisplayNames[strings.ToLower(ide)]; ok {
		return name
	}
	return LanguageDisplayName(ide)
}

// LanguageDisplayName turns a language identifier such as "python-django"
// into a title ("Python Django"), keeping known abbreviations intact.
func LanguageDisplayName(lang string) string {
	title := cases.Title(language.English)
	words := strings.FieldsFunc(lang, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		if name, ok := wordDisplayNames[strings.ToLower(w)]; ok {
			words[i] = name
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}

// PackName returns the package name for (ide, language).
func PackName(ide, language string) string {
	return fmt.Sprintf("%s-%s-pack", ide, language)
}
