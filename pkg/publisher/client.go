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
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/extpack/extpack/pkg/defaults"
)

// UserAgent is sent on every registry request.
const UserAgent = "extpack"

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 4 << 10

// ClientOption configures NewHTTPClient.
type ClientOption func(*clientConfig)

type clientConfig struct {
	limit     rate.Limit
	burst     int
	userAgent string
	insecure  bool
}

// WithRateLimit sets the sustained request rate and burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *clientConfig) {
		if rps > 0 {
			c.limit = rate.Limit(rps)
		}
		if burst > 0 {
			c.burst = burst
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(c *clientConfig) {
		c.insecure = skip
	}
}

// NewHTTPClient returns a client for registry calls. Requests are paced by a
// token bucket and bounded by transport phase timeouts only; the request
// context carries any overall deadline.
func NewHTTPClient(opts ...ClientOption) *http.Client {
	cfg := &clientConfig{
		limit:     rate.Limit(defaults.RegistryRequestsPerSecond),
		burst:     defaults.RegistryRequestBurst,
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &http.Client{
		Transport: &limitedTransport{
			next:      newTransport(cfg.insecure),
			limiter:   rate.NewLimiter(cfg.limit, cfg.burst),
			userAgent: cfg.userAgent,
		},
	}
}

func newTransport(insecure bool) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		ExpectContinueTimeout: defaults.HTTPExpectContinueTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: insecure, //nolint:gosec // opt-in for local registries
		},
	}
}

type limitedTransport struct {
	next      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}

// RedactURL drops credentials and the query string from a URL so that it
// can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.Redacted()
}

// StatusError is a registry response with a non-success status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// CheckResponse returns a *StatusError for responses outside 2xx. The body
// is read, up to a limit, into the error; the caller still closes it.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     resp.Request.Method,
		URL:        RedactURL(resp.Request.URL.String()),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
