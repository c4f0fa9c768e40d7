// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by the completion backends.
package httputil

import (
	"net/http"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// DefaultUserAgent is sent when HTTPConfig.UserAgent is empty.
const DefaultUserAgent = "manufacturer-finder"

// NewClient returns an HTTP client that applies cfg.Timeout to every
// exchange and stamps requests with the configured User-Agent. Requests
// are never retried.
func NewClient(cfg types.HTTPConfig) *http.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: ua,
		},
	}
}

// userAgentTransport sets the User-Agent header unless the caller already set one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper. The request is cloned before the
// header is added so the caller's request is left untouched.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
