package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extpack/extpack/pkg/collection"
	"github.com/extpack/extpack/pkg/errors"
)

func sampleContext() TemplateContext {
	return TemplateContext{
		IDE:                 "vscode",
		IDEDisplayName:      "VS Code",
		Language:            "python",
		LanguageDisplayName: "Python",
		Name:                "vscode-python-pack",
		DisplayName:         "Python Extension Pack for VS Code",
		Description:         "Python & friends",
		Version:             "1.2.3",
		Organization:        "Acme",
		Publisher:           "acme",
		RepositoryURL:       "https://github.com/acme/packs",
		License:             "MIT",
		EngineRange:         "^1.80.0",
		ConfigFingerprint:   "abc123",
		GeneratedDate:       "2026-01-02",
		Year:                2026,
		Tags:                []string{"python"},
		RequiredExtensions: []collection.Extension{{
			ID: "ms-python.python", Name: "Python", Description: "Language support",
			Publisher: "Microsoft", License: "MIT",
			MarketplaceURL: "https://marketplace.visualstudio.com/items?itemName=ms-python.python",
		}},
		OptionalExtensions: []collection.Extension{{
			ID: "charliermarsh.ruff", Name: "Ruff", Description: "Linter", Publisher: "Astral", License: "MIT",
		}},
		Settings: SettingEntries(map[string]collection.Setting{
			"editor.formatOnSave": {Value: true, Scope: collection.ScopeWorkspace},
			"python.languageServer": {Value: "Pylance", Scope: collection.ScopeUser, Description: "LSP"},
		}),
		Keybindings: []collection.Keybinding{{Key: "ctrl+shift+t", Command: "python.runTests", When: "editorLangId == python"}},
		Snippets: []collection.Snippet{{
			Name: "main", Prefix: "ifmain", Body: collection.NewSnippetBody("if __name__ == \"__main__\":", "    main()"),
		}},
		Documentation: collection.Documentation{Setup: "Install Python.", Troubleshooting: "Pick an interpreter."},
	}
}

func TestRenderEmbeddedPackageJSON(t *testing.T) {
	g := New()
	out, err := g.Render("package.json", sampleContext())
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest), out)
	assert.Equal(t, "vscode-python-pack", manifest["name"])
	assert.Equal(t, "1.2.3", manifest["version"])
	assert.Equal(t, "acme", manifest["publisher"])
	assert.Equal(t, "Python & friends", manifest["description"])
	assert.Equal(t, []any{"ms-python.python"}, manifest["extensionPack"])
	assert.Equal(t, "abc123", manifest["configFingerprint"])

	contributes, ok := manifest["contributes"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, contributes, "configuration")
	assert.Contains(t, contributes, "keybindings")
	assert.Contains(t, contributes, "snippets")
}

func TestRenderEmbeddedJSONFiles(t *testing.T) {
	g := New()
	ctx := sampleContext()

	for _, name := range []string{"settings.json", "keybindings.json", "snippets.json", "tsconfig.json"} {
		t.Run(name, func(t *testing.T) {
			out, err := g.Render(name, ctx)
			require.NoError(t, err)
			assert.True(t, json.Valid([]byte(out)), out)
		})
	}

	out, err := g.Render("snippets.json", ctx)
	require.NoError(t, err)
	var snippets map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &snippets))
	assert.Equal(t, "ifmain", snippets["main"]["prefix"])
	assert.Len(t, snippets["main"]["body"], 2)
}

func TestRenderEmbeddedMarkdown(t *testing.T) {
	g := New()
	ctx := sampleContext()

	readme, err := g.Render("README.md", ctx)
	require.NoError(t, err)
	assert.Contains(t, readme, "# Python Extension Pack for VS Code")
	assert.Contains(t, readme, "`ms-python.python`")
	assert.Contains(t, readme, "## Recommended Extensions")
	assert.Contains(t, readme, "Install Python.")

	license, err := g.Render("LICENSE", ctx)
	require.NoError(t, err)
	assert.Contains(t, license, "Copyright (c) 2026 Acme")
	assert.Contains(t, license, "Ruff (charliermarsh.ruff) by Astral: MIT (optional)")

	ts, err := g.Render("extension.ts", ctx)
	require.NoError(t, err)
	assert.Contains(t, ts, `"acme.vscode-python-pack"`)

	js, err := g.Render("extension.js", ctx)
	require.NoError(t, err)
	assert.Contains(t, js, "exports.activate = activate;")
	assert.Contains(t, js, `"acme.vscode-python-pack"`)
}

func TestRenderLicenseBySPDX(t *testing.T) {
	tests := []struct {
		license string
		first   string
	}{
		{"MIT", "MIT License"},
		{"Apache-2.0", "Copyright (c) 2026 Acme"},
		{"MPL-2.0", "MPL-2.0 License"},
	}
	g := New()
	for _, tt := range tests {
		t.Run(tt.license, func(t *testing.T) {
			ctx := sampleContext()
			ctx.License = tt.license
			out, err := g.Render("LICENSE", ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tt.first), "license starts with %q", strings.SplitN(out, "\n", 2)[0])
			assert.Contains(t, out, "Python (ms-python.python) by Microsoft: MIT")
		})
	}
}

func TestRenderWithoutOptionalSections(t *testing.T) {
	ctx := sampleContext()
	ctx.OptionalExtensions = nil
	ctx.Settings = nil
	ctx.Keybindings = nil
	ctx.Snippets = nil

	g := New()
	readme, err := g.Render("README.md", ctx)
	require.NoError(t, err)
	assert.NotContains(t, readme, "## Settings")
	assert.NotContains(t, readme, "## Recommended Extensions")

	out, err := g.Render("package.json", ctx)
	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	assert.Empty(t, manifest["contributes"])
}

func TestRenderCachesCompiledTemplates(t *testing.T) {
	root := fstest.MapFS{
		"greeting.tmpl": {Data: []byte("hello {{ .Name }}")},
	}
	g := New(WithTemplateFS(root))

	out, err := g.Render("greeting", struct{ Name string }{"one"})
	require.NoError(t, err)
	assert.Equal(t, "hello one", out)
	assert.Equal(t, 1, g.CacheSize())

	// The cached template wins over the changed source until the cache is cleared.
	root["greeting.tmpl"] = &fstest.MapFile{Data: []byte("bye {{ .Name }}")}
	out, err = g.Render("greeting", struct{ Name string }{"two"})
	require.NoError(t, err)
	assert.Equal(t, "hello two", out)
	assert.Equal(t, 1, g.CacheSize())

	g.ClearCache()
	assert.Zero(t, g.CacheSize())
	out, err = g.Render("greeting", struct{ Name string }{"three"})
	require.NoError(t, err)
	assert.Equal(t, "bye three", out)
}

func TestRenderErrors(t *testing.T) {
	root := fstest.MapFS{
		"broken.tmpl":  {Data: []byte("{{ if }")},
		"missing.tmpl": {Data: []byte("{{ .Nope }}")},
		"mapkey.tmpl":  {Data: []byte("{{ .absent }}")},
	}
	g := New(WithTemplateFS(root))

	tests := []struct {
		name     string
		template string
		data     any
		contains string
	}{
		{"not found", "ghost", nil, `template "ghost" not found`},
		{"parse error", "broken", nil, `failed to parse template "broken"`},
		{"missing field", "missing", struct{ Name string }{"x"}, `failed to render template "missing"`},
		{"missing map key", "mapkey", map[string]any{}, `failed to render template "mapkey"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Render(tt.template, tt.data)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeBuild))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
	assert.Equal(t, 2, g.CacheSize(), "templates that parsed stay cached even when execution fails")
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	g := New(WithTemplateFS(fstest.MapFS{"a.tmpl": {Data: []byte("{{ capitalize .Word }} {{ publisherOf .ID }}")}}))

	out := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o600))
	require.NoError(t, g.RenderToFile("a", map[string]string{"Word": "python tools", "ID": "ms-python.python"}, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Python Tools ms-python", string(data))

	err = g.RenderToFile("a", map[string]string{"Word": "x", "ID": "y"}, filepath.Join(dir, "missing", "a.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBuild))
}

func TestRenderConcurrent(t *testing.T) {
	g := New()
	ctx := sampleContext()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Render("README.md", ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, g.CacheSize())
}

func TestNames(t *testing.T) {
	names, err := New().Names()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CHANGELOG.md", "LICENSE", "README.md", "extension.js", "extension.ts", "keybindings.json",
		"package.json", "settings.json", "snippets.json", "tsconfig.json", "vscodeignore",
	}, names)
}

func TestWithTemplateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LICENSE.tmpl"), []byte("Proprietary {{ .Organization }}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NOTICE.tmpl"), []byte("notice"), 0o600))

	g := New(WithTemplateDir(dir))

	license, err := g.Render("LICENSE", sampleContext())
	require.NoError(t, err)
	assert.Equal(t, "Proprietary Acme", license)

	readme, err := g.Render("README.md", sampleContext())
	require.NoError(t, err)
	assert.Contains(t, readme, "# Python Extension Pack for VS Code")

	names, err := g.Names()
	require.NoError(t, err)
	assert.Contains(t, names, "NOTICE")
	assert.Contains(t, names, "package.json")
}
