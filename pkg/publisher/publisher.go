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

package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/extpack/extpack/pkg/bundler/checksum"
	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/vsix"
)

// RegistryAll names the rejected "publish everywhere" mode.
const RegistryAll = "all"

// Registry is one extension registry.
type Registry interface {
	// Type returns the registry identifier used in requests ("openvsx").
	Type() string

	// CheckVersionExists reports whether the extension version is already
	// published. Registries with private reads use credential to look it up.
	CheckVersionExists(ctx context.Context, credential string, m *vsix.Manifest) (bool, error)

	// Upload publishes the artifact.
	Upload(ctx context.Context, credential, artifactPath string, m *vsix.Manifest) error

	// CanonicalURL returns the public page of the extension version.
	CanonicalURL(m *vsix.Manifest) string

	// Hints returns remediation pointers used in error hints.
	Hints() Hints
}

// AnonymousRegistry is implemented by registries that accept uploads
// without a credential.
type AnonymousRegistry interface {
	AllowsAnonymous() bool
}

// Hints point users at registry-specific remediation.
type Hints struct {
	// TokenURL is where a rejected credential can be regenerated.
	TokenURL string

	// Scopes lists the permissions the credential needs.
	Scopes []string

	// StatusURL is where registry availability can be checked.
	StatusURL string
}

// Request describes one publish call.
type Request struct {
	// Credential is the registry secret. It is never logged.
	Credential string

	// ArtifactPath is the packaged extension.
	ArtifactPath string

	// Registry selects the target registry by type.
	Registry string
}

// Result describes a publish outcome.
type Result struct {
	Registry     string `json:"registry" yaml:"registry"`
	ArtifactPath string `json:"artifact_path" yaml:"artifact_path"`
	ExtensionID  string `json:"extension_id" yaml:"extension_id"`
	Version      string `json:"version" yaml:"version"`
	URL          string `json:"url" yaml:"url"`

	// IsUpdate is true when this call uploaded the version and false when
	// the registry already had it.
	IsUpdate bool `json:"is_update" yaml:"is_update"`
}

// TableHeader implements serializer.Tabular.
func (r *Result) TableHeader() []string {
	return []string{"REGISTRY", "EXTENSION", "VERSION", "STATUS", "URL"}
}

// TableRows implements serializer.Tabular.
func (r *Result) TableRows() [][]string {
	status := "skipped (already published)"
	if r.IsUpdate {
		status = "uploaded"
	}
	return [][]string{{r.Registry, r.ExtensionID, r.Version, status, r.URL}}
}

// Publisher uploads packaged extensions to registries, skipping versions
// that are already published.
//
// Thread-safety: Publisher is safe for concurrent use.
type Publisher struct {
	registries     map[string]Registry
	verifyChecksum bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRegistry registers a registry under its type.
func WithRegistry(r Registry) Option {
	return func(p *Publisher) {
		if r != nil {
			p.registries[r.Type()] = r
		}
	}
}

// WithChecksumVerification checks the artifact against its .sha256 sidecar,
// when one exists, before publishing.
func WithChecksumVerification(enabled bool) Option {
	return func(p *Publisher) {
		p.verifyChecksum = enabled
	}
}

// New returns a Publisher for the given registries.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		registries:     make(map[string]Registry),
		verifyChecksum: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registries returns the registered registry types, sorted.
func (p *Publisher) Registries() []string {
	names := make([]string, 0, len(p.registries))
	for name := range p.registries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Publish uploads the artifact in req to one registry. The extension
// identity and version are read from the artifact itself. When the registry
// already has the version, nothing is uploaded and Result.IsUpdate is false.
// A failing existence check is logged and treated as "not published".
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	reg, err := p.registry(req)
	if err != nil {
		return nil, err
	}

	res, outcome, err := p.publish(ctx, reg, req)
	publishTotal.WithLabelValues(reg.Type(), outcome).Inc()
	publishDuration.WithLabelValues(reg.Type()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Publisher) registry(req Request) (Registry, error) {
	if strings.EqualFold(req.Registry, RegistryAll) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"publishing to every registry in one call is not supported",
			map[string]any{"registries": p.Registries()},
		).WithHint("publish once per registry")
	}

	reg, ok := p.registries[req.Registry]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown registry %q", req.Registry),
			map[string]any{"registries": p.Registries()},
		).WithHint("use one of: " + strings.Join(p.Registries(), ", "))
	}

	if req.Credential == "" {
		if anon, ok := reg.(AnonymousRegistry); !ok || !anon.AllowsAnonymous() {
			return nil, errors.NewWithContext(errors.ErrCodeUnauthorized,
				fmt.Sprintf("a credential is required to publish to %s", reg.Type()),
				map[string]any{"registry": reg.Type()},
			).WithHint(tokenHint(reg.Hints()))
		}
	}
	return reg, nil
}

func (p *Publisher) publish(ctx context.Context, reg Registry, req Request) (*Result, string, error) {
	if _, err := os.Stat(req.ArtifactPath); err != nil {
		return nil, outcomeError, errors.WrapWithContext(errors.ErrCodeNotFound,
			"artifact not found", err,
			map[string]any{"artifact": req.ArtifactPath},
		).WithHint("build it first with: extpack build --package")
	}

	if p.verifyChecksum {
		verified, err := checksum.VerifySidecar(req.ArtifactPath)
		if err != nil {
			return nil, outcomeError, errors.WrapWithContext(errors.ErrCodePublish,
				"artifact failed checksum verification", err,
				map[string]any{"artifact": req.ArtifactPath},
			).WithHint("rebuild the package; the archive changed after it was written")
		}
		slog.Debug("artifact checksum", "artifact", req.ArtifactPath, "verified", verified)
	}

	m, err := vsix.ReadManifest(req.ArtifactPath)
	if err != nil {
		return nil, outcomeError, errors.WrapWithContext(errors.ErrCodePublish,
			"failed to read extension metadata from artifact", err,
			map[string]any{"artifact": req.ArtifactPath},
		).WithHint("check that the artifact is a VSIX produced by extpack build --package")
	}

	res := &Result{
		Registry:     reg.Type(),
		ArtifactPath: req.ArtifactPath,
		ExtensionID:  m.ID(),
		Version:      m.Version,
		URL:          reg.CanonicalURL(m),
	}

	exists, err := reg.CheckVersionExists(ctx, req.Credential, m)
	if err != nil {
		slog.Warn("version check failed, continuing with upload",
			"registry", reg.Type(),
			"extension", res.ExtensionID,
			"version", res.Version,
			"error", err,
		)
		exists = false
	}
	if exists {
		slog.Info("version already published, skipping upload",
			"registry", reg.Type(),
			"extension", res.ExtensionID,
			"version", res.Version,
			"url", res.URL,
		)
		return res, outcomeSkipped, nil
	}

	slog.Info("uploading extension",
		"registry", reg.Type(),
		"extension", res.ExtensionID,
		"version", res.Version,
	)
	if err := reg.Upload(ctx, req.Credential, req.ArtifactPath, m); err != nil {
		return nil, outcomeError, classify(err, reg, m)
	}

	res.IsUpdate = true
	slog.Info("extension published",
		"registry", reg.Type(),
		"extension", res.ExtensionID,
		"version", res.Version,
		"url", res.URL,
	)
	return res, outcomeUploaded, nil
}
