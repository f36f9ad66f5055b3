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
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extpack/extpack/pkg/publisher"
	"github.com/extpack/extpack/pkg/vsix"
)

var manifest = &vsix.Manifest{Publisher: "acme", Name: "vscode-python-pack", Version: "1.2.3"}

type fakeServer struct {
	mu        sync.Mutex
	published bool
	uploads   int
	token     string
	body      int
}

func (s *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/acme/vscode-python-pack/1.2.3", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.published {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"version":"1.2.3"}`)
	})
	mux.HandleFunc("POST /api/-/publish", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.uploads++
		s.token = r.URL.Query().Get("token")
		b, _ := io.ReadAll(r.Body)
		s.body = len(b)
		if s.token != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Invalid access token."}`)
			return
		}
		s.published = true
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func newTestRegistry(t *testing.T) (*Registry, *fakeServer) {
	t.Helper()
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler())
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client())), fs
}

func TestCheckVersionExists(t *testing.T) {
	r, fs := newTestRegistry(t)

	exists, err := r.CheckVersionExists(context.Background(), "", manifest)
	require.NoError(t, err)
	assert.False(t, exists)

	fs.mu.Lock()
	fs.published = true
	fs.mu.Unlock()

	exists, err = r.CheckVersionExists(context.Background(), "", manifest)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpload(t *testing.T) {
	r, fs := newTestRegistry(t)
	artifact := writeFile(t, "archive-bytes")

	require.NoError(t, r.Upload(context.Background(), "good", artifact, manifest))
	fs.mu.Lock()
	assert.Equal(t, "good", fs.token)
	assert.Equal(t, len("archive-bytes"), fs.body)
	fs.mu.Unlock()

	err := r.Upload(context.Background(), "bad", artifact, manifest)
	require.Error(t, err)
	se, ok := err.(*publisher.StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.NotContains(t, err.Error(), "token=bad")
}

func TestUploadTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	r := New(WithBaseURL(base))
	err := r.Upload(context.Background(), "s3cr3t", writeFile(t, "x"), manifest)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t")
}

func TestURLs(t *testing.T) {
	r := New()
	assert.Equal(t, Type, r.Type())
	assert.Equal(t, "https://open-vsx.org/extension/acme/vscode-python-pack/1.2.3", r.CanonicalURL(manifest))
	assert.Equal(t, "https://open-vsx.org/user-settings/tokens", r.Hints().TokenURL)
}
