// Zaparoo Indexer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Indexer.
//
// Zaparoo Indexer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Indexer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Indexer.  If not, see <http://www.gnu.org/licenses/>.

package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeoutSeconds is the default timeout for HTTP requests
	DefaultTimeoutSeconds = 30
	userAgent             = "Zaparoo Indexer/1.0"
)

// BasicAuthTransport adds HTTP basic credentials to every request it sends.
// An empty username sends requests unauthenticated.
type BasicAuthTransport struct {
	Base     http.RoundTripper
	Username string
	Password string
}

// RoundTrip implements http.RoundTripper interface
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// DefaultTransport provides a configured transport with connection pooling and reasonable timeouts
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// Client provides an HTTP client with optional basic auth and sensible defaults
type Client struct {
	*http.Client
}

// NewClientWithTimeout creates a new unauthenticated HTTP client with a custom timeout
func NewClientWithTimeout(timeout time.Duration) *Client {
	return NewBasicAuthClient(timeout, "", "")
}

// NewBasicAuthClient creates a client that authenticates every request with
// the given credentials.
func NewBasicAuthClient(timeout time.Duration, username, password string) *Client {
	return &Client{
		Client: &http.Client{
			Transport: &BasicAuthTransport{
				Base:     DefaultTransport,
				Username: username,
				Password: password,
			},
			Timeout: timeout,
		},
	}
}

// Get performs a GET request and returns the response
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing GET request: %w", err)
	}

	return resp, nil
}

// DrainAndClose discards any remaining body so the connection can be reused.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close response body")
	}
}

// DefaultClient provides a shared HTTP client instance
var DefaultClient = NewClientWithTimeout(DefaultTimeoutSeconds * time.Second)
