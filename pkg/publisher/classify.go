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
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"

	"github.com/extpack/extpack/pkg/errors"
	"github.com/extpack/extpack/pkg/vsix"
)

// classify maps an upload failure onto the publish error codes. Structured
// errors are returned unchanged.
func classify(err error, reg Registry, m *vsix.Manifest) error {
	if _, ok := errors.As(err); ok {
		return err
	}

	hints := reg.Hints()
	fields := map[string]any{
		"registry":  reg.Type(),
		"extension": m.ID(),
		"version":   m.Version,
	}

	var status *StatusError
	if stderrors.As(err, &status) {
		fields["status"] = status.StatusCode
		switch status.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.WrapWithContext(errors.ErrCodeUnauthorized,
				fmt.Sprintf("%s rejected the credential", reg.Type()), err, fields,
			).WithHint(tokenHint(hints))
		case http.StatusConflict:
			return versionConflict(err, reg, m, fields)
		}
	}

	if isAlreadyExists(err) {
		return versionConflict(err, reg, m, fields)
	}

	if isNetwork(err) {
		hint := "check your network connection"
		if hints.StatusURL != "" {
			hint = fmt.Sprintf("check your network connection and registry status at %s", hints.StatusURL)
		}
		return errors.WrapWithContext(errors.ErrCodeNetwork,
			fmt.Sprintf("could not reach %s", reg.Type()), err, fields,
		).WithHint(hint)
	}

	return errors.WrapWithContext(errors.ErrCodePublish,
		fmt.Sprintf("failed to publish %s@%s to %s", m.ID(), m.Version, reg.Type()), err, fields)
}

func versionConflict(err error, reg Registry, m *vsix.Manifest, fields map[string]any) error {
	return errors.WrapWithContext(errors.ErrCodeVersionConflict,
		fmt.Sprintf("%s@%s already exists on %s", m.ID(), m.Version, reg.Type()), err, fields,
	).WithHint("bump the version with: extpack version bump, then rebuild")
}

func tokenHint(h Hints) string {
	hint := "check the registry credential"
	if h.TokenURL != "" {
		hint = "create a new token at " + h.TokenURL
	}
	if len(h.Scopes) > 0 {
		hint += " with scopes: " + strings.Join(h.Scopes, ", ")
	}
	return hint
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "already published")
}

func isNetwork(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, os.ErrDeadlineExceeded) ||
		stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return true
	}

	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
