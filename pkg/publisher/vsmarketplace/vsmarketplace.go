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

package vsmarketplace

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/extpack/extpack/pkg/publisher"
	"github.com/extpack/extpack/pkg/vsix"
)

const (
	// Type identifies the registry in publish requests.
	Type = "vsmarketplace"

	// DefaultGalleryURL is the gallery REST API root.
	DefaultGalleryURL = "https://marketplace.visualstudio.com/_apis/gallery"

	// DefaultItemURL is the public item page.
	DefaultItemURL = "https://marketplace.visualstudio.com/items"

	apiVersion = "7.1-preview.1"

	// maxPage bounds how much of the item page is scanned.
	maxPage = 4 << 20
)

// Registry publishes to the Visual Studio Marketplace.
type Registry struct {
	galleryURL string
	itemURL    string
	client     *http.Client
}

// Option configures a Registry.
type Option func(*Registry)

// WithGalleryURL overrides the gallery REST API root.
func WithGalleryURL(u string) Option {
	return func(r *Registry) {
		if u != "" {
			r.galleryURL = strings.TrimRight(u, "/")
		}
	}
}

// WithItemURL overrides the public item page used for version checks.
func WithItemURL(u string) Option {
	return func(r *Registry) {
		if u != "" {
			r.itemURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the client used for registry calls.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) {
		if c != nil {
			r.client = c
		}
	}
}

// New returns a Visual Studio Marketplace registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		galleryURL: DefaultGalleryURL,
		itemURL:    DefaultItemURL,
		client:     publisher.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Type implements publisher.Registry.
func (r *Registry) Type() string { return Type }

// CheckVersionExists fetches the public item page and looks for the version
// in its embedded metadata. The page layout is not a stable API, so a miss
// only means the version was not found on the page.
func (r *Registry) CheckVersionExists(ctx context.Context, _ string, m *vsix.Manifest) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.CanonicalURL(m), nil)
	if err != nil {
		return false, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := publisher.CheckResponse(resp); err != nil {
		return false, err
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPage))
	if err != nil {
		return false, err
	}
	return versionPattern(m.Version).Match(page), nil
}

// versionPattern matches the version as a JSON value or a table cell.
func versionPattern(v string) *regexp.Regexp {
	q := regexp.QuoteMeta(v)
	return regexp.MustCompile(`"version"\s*:\s*"` + q + `"|>\s*` + q + `\s*<`)
}

// Upload updates the extension, creating it when the marketplace does not
// know it yet.
func (r *Registry) Upload(ctx context.Context, credential, artifactPath string, m *vsix.Manifest) error {
	base := fmt.Sprintf("%s/publishers/%s/extensions", r.galleryURL, url.PathEscape(m.Publisher))

	err := r.send(ctx, http.MethodPut, base, credential, artifactPath)
	if se, ok := err.(*publisher.StatusError); ok && se.StatusCode == http.StatusNotFound {
		return r.send(ctx, http.MethodPost, base, credential, artifactPath)
	}
	return err
}

func (r *Registry) send(ctx context.Context, method, endpoint, credential, artifactPath string) error {
	f, err := os.Open(artifactPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?api-version="+apiVersion, f)
	if err != nil {
		return err
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json;api-version="+apiVersion)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+credential)))

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return publisher.CheckResponse(resp)
}

// CanonicalURL returns the marketplace item page.
func (r *Registry) CanonicalURL(m *vsix.Manifest) string {
	return r.itemURL + "?itemName=" + url.QueryEscape(m.ID())
}

// Hints implements publisher.Registry.
func (r *Registry) Hints() publisher.Hints {
	return publisher.Hints{
		TokenURL:  "https://dev.azure.com/_usersSettings/tokens",
		Scopes:    []string{"Marketplace (Manage)"},
		StatusURL: "https://status.dev.azure.com",
	}
}
