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
	"archive/zip"
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extpack/extpack/pkg/bundler/checksum"
	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/vsix"
)

const testManifest = `{"name":"vscode-python-pack","publisher":"acme","version":"1.2.3","engines":{"vscode":"^1.80.0"}}`

// writeArtifact writes a minimal VSIX holding only the package manifest.
func writeArtifact(t *testing.T, manifest string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.vsix")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"extension.vsixmanifest": "<PackageManifest/>",
		vsix.ManifestEntry:       manifest,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

type fakeRegistry struct {
	mu        sync.Mutex
	published map[string]bool
	uploads   int
	checkErr  error
	uploadErr error
	anonymous bool

	// readSecret, when set, is required to look versions up.
	readSecret string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{published: make(map[string]bool)}
}

func (f *fakeRegistry) Type() string { return "fake" }

func (f *fakeRegistry) CheckVersionExists(_ context.Context, credential string, m *vsix.Manifest) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return false, f.checkErr
	}
	if f.readSecret != "" && credential != f.readSecret {
		return false, &StatusError{Method: "GET", URL: "https://registry.example.com", StatusCode: 401}
	}
	return f.published[m.ID()+"@"+m.Version], nil
}

func (f *fakeRegistry) Upload(_ context.Context, _, _ string, m *vsix.Manifest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.published[m.ID()+"@"+m.Version] = true
	return nil
}

func (f *fakeRegistry) CanonicalURL(m *vsix.Manifest) string {
	return "https://registry.example.com/" + m.ID() + "/" + m.Version
}

func (f *fakeRegistry) Hints() Hints {
	return Hints{
		TokenURL:  "https://registry.example.com/tokens",
		Scopes:    []string{"publish"},
		StatusURL: "https://status.example.com",
	}
}

func (f *fakeRegistry) AllowsAnonymous() bool { return f.anonymous }

func TestPublishIsIdempotent(t *testing.T) {
	reg := newFakeRegistry()
	p := New(WithRegistry(reg))
	artifact := writeArtifact(t, testManifest)
	req := Request{Credential: "secret", ArtifactPath: artifact, Registry: "fake"}

	first, err := p.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.IsUpdate)
	assert.Equal(t, "acme.vscode-python-pack", first.ExtensionID)
	assert.Equal(t, "1.2.3", first.Version)
	assert.Equal(t, "fake", first.Registry)

	second, err := p.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.IsUpdate)
	assert.Equal(t, first.URL, second.URL)

	assert.Equal(t, 1, reg.uploads)
}

func TestPublishIsIdempotentWithPrivateReads(t *testing.T) {
	reg := newFakeRegistry()
	reg.readSecret = "secret"
	p := New(WithRegistry(reg))
	req := Request{Credential: "secret", ArtifactPath: writeArtifact(t, testManifest), Registry: "fake"}

	first, err := p.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.IsUpdate)

	second, err := p.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.IsUpdate)

	assert.Equal(t, 1, reg.uploads)
}

func TestPublishCheckFailureFailsOpen(t *testing.T) {
	reg := newFakeRegistry()
	reg.checkErr = stderrors.New("page layout changed")
	p := New(WithRegistry(reg))

	res, err := p.Publish(context.Background(), Request{
		Credential: "secret", ArtifactPath: writeArtifact(t, testManifest), Registry: "fake",
	})
	require.NoError(t, err)
	assert.True(t, res.IsUpdate)
	assert.Equal(t, 1, reg.uploads)
}

func TestPublishRequestErrors(t *testing.T) {
	artifact := writeArtifact(t, testManifest)

	tests := []struct {
		name string
		req  Request
		code errors.ErrorCode
	}{
		{"all registries", Request{Credential: "s", ArtifactPath: artifact, Registry: "all"}, errors.ErrCodeInvalidRequest},
		{"unknown registry", Request{Credential: "s", ArtifactPath: artifact, Registry: "nope"}, errors.ErrCodeInvalidRequest},
		{"missing credential", Request{ArtifactPath: artifact, Registry: "fake"}, errors.ErrCodeUnauthorized},
		{"missing artifact", Request{Credential: "s", ArtifactPath: filepath.Join(t.TempDir(), "x.vsix"), Registry: "fake"}, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFakeRegistry()
			_, err := New(WithRegistry(reg)).Publish(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
			assert.Zero(t, reg.uploads)
		})
	}
}

func TestPublishAnonymousRegistry(t *testing.T) {
	reg := newFakeRegistry()
	reg.anonymous = true

	res, err := New(WithRegistry(reg)).Publish(context.Background(), Request{
		ArtifactPath: writeArtifact(t, testManifest), Registry: "fake",
	})
	require.NoError(t, err)
	assert.True(t, res.IsUpdate)
}

func TestPublishArtifactErrors(t *testing.T) {
	t.Run("not an archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pack.vsix")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

		_, err := New(WithRegistry(newFakeRegistry())).Publish(context.Background(), Request{
			Credential: "s", ArtifactPath: path, Registry: "fake",
		})
		assert.True(t, errors.IsCode(err, errors.ErrCodePublish))
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		artifact := writeArtifact(t, testManifest)
		require.NoError(t, os.WriteFile(checksum.SidecarPath(artifact),
			[]byte("0000000000000000000000000000000000000000000000000000000000000000  pack.vsix\n"), 0o644))

		reg := newFakeRegistry()
		_, err := New(WithRegistry(reg)).Publish(context.Background(), Request{
			Credential: "s", ArtifactPath: artifact, Registry: "fake",
		})
		assert.True(t, errors.IsCode(err, errors.ErrCodePublish))
		assert.Zero(t, reg.uploads)

		// verification can be turned off
		_, err = New(WithRegistry(reg), WithChecksumVerification(false)).Publish(context.Background(), Request{
			Credential: "s", ArtifactPath: artifact, Registry: "fake",
		})
		assert.NoError(t, err)
	})
}

func TestPublishErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		hintHas  string
		msgCause string
	}{
		{"unauthorized", &StatusError{Method: "POST", URL: "u", StatusCode: 401}, errors.ErrCodeUnauthorized, "https://registry.example.com/tokens", ""},
		{"forbidden", &StatusError{Method: "POST", URL: "u", StatusCode: 403}, errors.ErrCodeUnauthorized, "publish", ""},
		{"conflict status", &StatusError{Method: "POST", URL: "u", StatusCode: 409}, errors.ErrCodeVersionConflict, "version bump", ""},
		{"conflict message", stderrors.New("Extension acme.vscode-python-pack 1.2.3 is already published"), errors.ErrCodeVersionConflict, "", ""},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, errors.ErrCodeNetwork, "https://status.example.com", ""},
		{"dns", &net.DNSError{Err: "no such host", Name: "registry.example.com"}, errors.ErrCodeNetwork, "status", ""},
		{"timeout", context.DeadlineExceeded, errors.ErrCodeNetwork, "", ""},
		{"other status", &StatusError{Method: "POST", URL: "u", StatusCode: 400, Body: "icon missing"}, errors.ErrCodePublish, "", "icon missing"},
		{"structured passes through", errors.New(errors.ErrCodeInternal, "boom"), errors.ErrCodeInternal, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFakeRegistry()
			reg.uploadErr = tt.err

			_, err := New(WithRegistry(reg)).Publish(context.Background(), Request{
				Credential: "s", ArtifactPath: writeArtifact(t, testManifest), Registry: "fake",
			})
			require.Error(t, err)

			se, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, se.Code)
			if tt.hintHas != "" {
				assert.Contains(t, se.Hint, tt.hintHas)
			}
			if tt.msgCause != "" {
				assert.Contains(t, err.Error(), tt.msgCause)
			}
		})
	}
}

func TestRegistries(t *testing.T) {
	p := New(WithRegistry(newFakeRegistry()), WithRegistry(nil))
	assert.Equal(t, []string{"fake"}, p.Registries())
}
