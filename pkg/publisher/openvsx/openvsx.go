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

package openvsx

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/extpack/extpack/pkg/publisher"
	"github.com/extpack/extpack/pkg/vsix"
)

const (
	// Type identifies the registry in publish requests.
	Type = "openvsx"

	// DefaultBaseURL is the public Open VSX instance.
	DefaultBaseURL = "https://open-vsx.org"
)

// Registry publishes to an Open VSX server.
type Registry struct {
	baseURL string
	client  *http.Client
}

// Option configures a Registry.
type Option func(*Registry)

// WithBaseURL points the registry at another Open VSX server.
func WithBaseURL(u string) Option {
	return func(r *Registry) {
		if u != "" {
			r.baseURL = strings.TrimRight(u, "/")
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

// New returns an Open VSX registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		baseURL: DefaultBaseURL,
		client:  publisher.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Type implements publisher.Registry.
func (r *Registry) Type() string { return Type }

// CheckVersionExists looks the version up with the versioned extension API.
func (r *Registry) CheckVersionExists(ctx context.Context, _ string, m *vsix.Manifest) (bool, error) {
	u := fmt.Sprintf("%s/api/%s/%s/%s", r.baseURL,
		url.PathEscape(m.Publisher), url.PathEscape(m.Name), url.PathEscape(m.Version))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

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
	return true, nil
}

// Upload posts the artifact to the publish endpoint.
func (r *Registry) Upload(ctx context.Context, credential, artifactPath string, _ *vsix.Manifest) error {
	f, err := os.Open(artifactPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	u := r.baseURL + "/api/-/publish?token=" + url.QueryEscape(credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, f)
	if err != nil {
		return redact(err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return redact(err)
	}
	defer resp.Body.Close()

	return publisher.CheckResponse(resp)
}

// CanonicalURL returns the extension version page.
func (r *Registry) CanonicalURL(m *vsix.Manifest) string {
	return fmt.Sprintf("%s/extension/%s/%s/%s", r.baseURL, m.Publisher, m.Name, m.Version)
}

// Hints implements publisher.Registry.
func (r *Registry) Hints() publisher.Hints {
	return publisher.Hints{
		TokenURL:  r.baseURL + "/user-settings/tokens",
		Scopes:    []string{"publish (namespace member)"},
		StatusURL: "https://status.open-vsx.org",
	}
}

// redact keeps the access token out of transport errors.
func redact(err error) error {
	var uerr *url.Error
	if stderrors.As(err, &uerr) {
		uerr.URL = publisher.RedactURL(uerr.URL)
	}
	return err
}
