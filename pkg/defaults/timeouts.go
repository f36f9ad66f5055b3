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

package defaults

import "time"

// HTTP transport timeouts for outbound registry requests. No total request
// timeout is applied; large uploads are bounded only by these phases and the
// caller's context.
const (
	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 10 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	// Registries can take a while to acknowledge a large upload.
	HTTPResponseHeaderTimeout = 2 * time.Minute

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Registry request pacing.
const (
	// RegistryRequestsPerSecond is the sustained outbound request rate per registry client.
	RegistryRequestsPerSecond = 5

	// RegistryRequestBurst is the burst size allowed above the sustained rate.
	RegistryRequestBurst = 10
)

// CLI timeouts for command-line operations.
const (
	// CLIBuildTimeout bounds a single build command, including packaging.
	CLIBuildTimeout = 5 * time.Minute

	// CLIPublishTimeout bounds a single publish command.
	CLIPublishTimeout = 15 * time.Minute
)
