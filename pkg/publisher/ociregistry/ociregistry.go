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

package ociregistry

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/errcode"

	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/publisher"
	"github.com/extpack/extpack/pkg/vsix"
)

const (
	// Type identifies the registry in publish requests.
	Type = "oci"

	// URIScheme prefixes canonical artifact URLs.
	URIScheme = "oci://"

	// ArtifactType is the manifest artifact type of pushed packs.
	ArtifactType = "application/vnd.extpack.extension.v1"

	// MediaTypeVSIX is the media type of the single VSIX layer.
	MediaTypeVSIX = "application/vnd.microsoft.vsix"
)

// Registry publishes VSIX archives as OCI artifacts. Each extension is
// stored in {repository}/{publisher}.{name} and tagged with its version.
type Registry struct {
	host       string
	repository string
	plainHTTP  bool
	client     *http.Client
}

// Option configures a Registry.
type Option func(*Registry)

// WithPlainHTTP talks to the registry over HTTP.
func WithPlainHTTP(plain bool) Option {
	return func(r *Registry) {
		r.plainHTTP = plain
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

// New returns a registry rooted at target, e.g. "ghcr.io/acme/extensions".
// A scheme prefix (oci://, https://, http://) is accepted; tags and digests
// are not, since tags are derived from extension versions.
func New(target string, opts ...Option) (*Registry, error) {
	host, repo, err := parseTarget(target)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		host:       host,
		repository: repo,
		plainHTTP:  strings.HasPrefix(target, "http://"),
		client:     publisher.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func parseTarget(target string) (string, string, error) {
	trimmed := stripProtocol(target)
	ref, err := reference.ParseNormalizedNamed(trimmed)
	if err != nil {
		return "", "", errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"invalid OCI registry target", err, map[string]any{"target": target})
	}
	if _, ok := ref.(reference.Tagged); ok {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"OCI registry target must not include a tag", map[string]any{"target": target}).
			WithHint("tags are set from the extension version")
	}
	if _, ok := ref.(reference.Digested); ok {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"OCI registry target must not include a digest", map[string]any{"target": target})
	}
	return reference.Domain(ref), reference.Path(ref), nil
}

// stripProtocol removes a URI scheme from a registry target.
func stripProtocol(target string) string {
	for _, p := range []string{URIScheme, "https://", "http://"} {
		target = strings.TrimPrefix(target, p)
	}
	return target
}

// Type implements publisher.Registry.
func (r *Registry) Type() string { return Type }

// AllowsAnonymous reports that uploads may rely on the Docker credential
// store or an unauthenticated registry.
func (r *Registry) AllowsAnonymous() bool { return true }

// Tag converts a semantic version into a valid OCI tag.
func Tag(version string) string {
	return strings.ReplaceAll(version, "+", "_")
}

func (r *Registry) repositoryFor(m *vsix.Manifest) string {
	return r.repository + "/" + strings.ToLower(m.ID())
}

// Reference returns the image reference of an extension version.
func (r *Registry) Reference(m *vsix.Manifest) string {
	return fmt.Sprintf("%s/%s:%s", r.host, r.repositoryFor(m), Tag(m.Version))
}

func (r *Registry) remote(m *vsix.Manifest, credential string) (*remote.Repository, error) {
	repo, err := remote.NewRepository(r.host + "/" + r.repositoryFor(m))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.PlainHTTP = r.plainHTTP
	repo.Client = &auth.Client{
		Client:     r.client,
		Cache:      auth.NewCache(),
		Credential: r.credential(credential),
	}
	return repo, nil
}

// credential resolves "user:password", a bare token, or, when empty, the
// Docker credential store.
func (r *Registry) credential(secret string) auth.CredentialFunc {
	if secret == "" {
		store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
		if err != nil {
			return auth.StaticCredential(r.host, auth.EmptyCredential)
		}
		return credentials.Credential(store)
	}
	if user, pass, ok := strings.Cut(secret, ":"); ok {
		return auth.StaticCredential(r.host, auth.Credential{Username: user, Password: pass})
	}
	return auth.StaticCredential(r.host, auth.Credential{AccessToken: secret})
}

// CheckVersionExists resolves the version tag with the same credential
// resolution as Upload.
func (r *Registry) CheckVersionExists(ctx context.Context, credential string, m *vsix.Manifest) (bool, error) {
	repo, err := r.remote(m, credential)
	if err != nil {
		return false, err
	}
	_, err = repo.Resolve(ctx, Tag(m.Version))
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, errdef.ErrNotFound) {
		return false, nil
	}
	return false, translate(err)
}

// Upload pushes the archive as a single-layer artifact tagged with the
// extension version.
func (r *Registry) Upload(ctx context.Context, credential, artifactPath string, m *vsix.Manifest) error {
	abs, err := filepath.Abs(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to resolve artifact path: %w", err)
	}

	fs, err := file.New(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("failed to create file store: %w", err)
	}
	defer func() { _ = fs.Close() }()

	layer, err := fs.Add(ctx, filepath.Base(abs), MediaTypeVSIX, abs)
	if err != nil {
		return fmt.Errorf("failed to add artifact to store: %w", err)
	}

	annotations := map[string]string{
		ociv1.AnnotationTitle:   m.ID(),
		ociv1.AnnotationVersion: m.Version,
	}
	if m.Description != "" {
		annotations[ociv1.AnnotationDescription] = m.Description
	}
	if m.Repository.URL != "" {
		annotations[ociv1.AnnotationSource] = m.Repository.URL
	}
	if m.License != "" {
		annotations[ociv1.AnnotationLicenses] = m.License
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return fmt.Errorf("failed to pack manifest: %w", err)
	}

	tag := Tag(m.Version)
	if err := fs.Tag(ctx, manifestDesc, tag); err != nil {
		return fmt.Errorf("failed to tag manifest in local store: %w", err)
	}

	repo, err := r.remote(m, credential)
	if err != nil {
		return err
	}

	if _, err := oras.Copy(ctx, fs, tag, repo, tag, oras.DefaultCopyOptions); err != nil {
		return translate(err)
	}
	return nil
}

// translate turns registry error responses into publisher status errors.
func translate(err error) error {
	var resp *errcode.ErrorResponse
	if !stderrors.As(err, &resp) {
		return err
	}
	u := ""
	if resp.URL != nil {
		u = publisher.RedactURL(resp.URL.String())
	}
	return fmt.Errorf("oci registry: %w", &publisher.StatusError{
		Method:     resp.Method,
		URL:        u,
		StatusCode: resp.StatusCode,
		Body:       resp.Errors.Error(),
	})
}

// CanonicalURL returns the oci:// reference of the extension version.
func (r *Registry) CanonicalURL(m *vsix.Manifest) string {
	return URIScheme + r.Reference(m)
}

// Hints implements publisher.Registry.
func (r *Registry) Hints() publisher.Hints {
	return publisher.Hints{
		Scopes: []string{"push access to " + r.host + "/" + r.repository},
	}
}
