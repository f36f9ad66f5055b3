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
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/extpack/extpack/pkg/publisher"
	"github.com/extpack/extpack/pkg/vsix"
)

var manifest = &vsix.Manifest{Publisher: "acme", Name: "vscode-python-pack", Version: "1.2.3"}

func TestCheckVersionExists(t *testing.T) {
	tests := []struct {
		name   string
		status int
		page   string
		want   bool
	}{
		{"json metadata", http.StatusOK, `<script>{"version": "1.2.3","lastUpdated":"x"}</script>`, true},
		{"table cell", http.StatusOK, `<td>Version</td><td> 1.2.3 </td>`, true},
		{"other version", http.StatusOK, `{"version":"1.2.30"}`, false},
		{"unknown item", http.StatusNotFound, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "acme.vscode-python-pack", r.URL.Query().Get("itemName"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.page)
			}))
			defer srv.Close()

			r := New(WithItemURL(srv.URL+"/items"), WithHTTPClient(srv.Client()))
			got, err := r.CheckVersionExists(context.Background(), "", manifest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New(WithItemURL(srv.URL)).CheckVersionExists(context.Background(), "", manifest)
		assert.Error(t, err)
	})
}

func TestUploadCreatesUnknownExtension(t *testing.T) {
	var methods []string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/publishers/acme/extensions", r.URL.Path)
		assert.Equal(t, apiVersion, r.URL.Query().Get("api-version"))
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	artifact := filepath.Join(t.TempDir(), "pack.vsix")
	require.NoError(t, os.WriteFile(artifact, []byte("archive"), 0o644))

	r := New(WithGalleryURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, r.Upload(context.Background(), "pat", artifact, manifest))

	assert.Equal(t, []string{http.MethodPut, http.MethodPost}, methods)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte(":pat")), auth)
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	artifact := filepath.Join(t.TempDir(), "pack.vsix")
	require.NoError(t, os.WriteFile(artifact, []byte("archive"), 0o644))

	err := New(WithGalleryURL(srv.URL)).Upload(context.Background(), "pat", artifact, manifest)
	se, ok := err.(*publisher.StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestCanonicalURL(t *testing.T) {
	r := New()
	assert.Equal(t, Type, r.Type())
	assert.Equal(t, "https://marketplace.visualstudio.com/items?itemName=acme.vscode-python-pack", r.CanonicalURL(manifest))
	assert.Contains(t, r.Hints().Scopes, "Marketplace (Manage)")
}
