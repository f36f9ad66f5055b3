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

package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SidecarSuffix is appended to an artifact path to name its checksum file.
const SidecarSuffix = ".sha256"

// ErrMismatch is returned when an artifact does not match its sidecar.
var ErrMismatch = errors.New("checksum mismatch")

// FileSHA256 returns the hex-encoded SHA256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for checksum: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s for checksum: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SidecarPath returns the checksum file path for an artifact.
func SidecarPath(artifactPath string) string {
	return artifactPath + SidecarSuffix
}

// WriteSidecar computes the artifact digest and writes it next to the
// artifact in sha256sum format. It returns the digest.
func WriteSidecar(ctx context.Context, artifactPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	sum, err := FileSHA256(artifactPath)
	if err != nil {
		return "", err
	}

	path := SidecarPath(artifactPath)
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(artifactPath))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write checksum: %w", err)
	}

	slog.Debug("checksum written",
		"artifact", artifactPath,
		"path", path,
	)
	return sum, nil
}

// VerifySidecar checks an artifact against its checksum file. It reports
// false without error when no checksum file exists.
func VerifySidecar(artifactPath string) (bool, error) {
	data, err := os.ReadFile(SidecarPath(artifactPath))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read checksum: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return false, fmt.Errorf("checksum file for %s is empty", artifactPath)
	}

	sum, err := FileSHA256(artifactPath)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(fields[0], sum) {
		return false, fmt.Errorf("%w: %s has %s, expected %s", ErrMismatch, filepath.Base(artifactPath), sum, fields[0])
	}
	return true, nil
}
