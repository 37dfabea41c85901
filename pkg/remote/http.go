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

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxListingBytes = 16 << 20

var ErrBadStatus = errors.New("unexpected http status")

// HTTPOpener crawls auto-generated directory index pages. Every Conn shares
// the opener's client, which carries the endpoint's basic-auth credentials.
type HTTPOpener struct {
	client *httpclient.Client
	start  *url.URL
}

func NewHTTPOpener(ep Endpoint, timeout time.Duration) (*HTTPOpener, error) {
	base, err := parseBaseURL(ep.Host)
	if err != nil {
		return nil, err
	}
	// The start path is always a directory; without the trailing slash
	// relative links on its index page resolve against the parent.
	startPath := strings.Trim(ep.Path, "/")
	if startPath != "" {
		startPath += "/"
	}
	start, err := url.Parse(base.String() + "/" + startPath)
	if err != nil {
		return nil, fmt.Errorf("invalid start path %q: %w", ep.Path, err)
	}
	user, pass := ep.Credentials()
	return &HTTPOpener{
		client: httpclient.NewBasicAuthClient(timeout, user, pass),
		start:  start,
	}, nil
}

func (o *HTTPOpener) StartLocation() string {
	return o.start.String()
}

// Open checks that the start page is reachable with the configured
// credentials.
func (o *HTTPOpener) Open(ctx context.Context) (Conn, error) {
	resp, err := o.client.Get(ctx, o.start.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", o.start.Host, err)
	}
	defer httpclient.DrainAndClose(resp)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, o.start.Host, resp.StatusCode)
	}
	return &httpConn{client: o.client, start: o.start}, nil
}

type httpConn struct {
	client *httpclient.Client
	start  *url.URL
}

func (c *httpConn) ListChildren(ctx context.Context, location string) ([]Entry, error) {
	page, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", location, err)
	}

	resp, err := c.client.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer httpclient.DrainAndClose(resp)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, location, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", location, err)
	}

	// Links are relative to the page actually served, which may differ
	// from the one requested after a redirect.
	if resp.Request != nil && resp.Request.URL != nil {
		page = resp.Request.URL
	}
	return c.entriesFromDocument(page, doc), nil
}

func (*httpConn) Close() error {
	return nil
}

func (c *httpConn) entriesFromDocument(page *url.URL, doc *html.Node) []Entry {
	// Some index generators wrap the real listing in a table and put
	// navigation links elsewhere on the page.
	scope := findFileTable(doc)
	if scope == nil {
		scope = doc
	}

	var entries []Entry
	for _, a := range anchors(scope) {
		href := attr(a, "href")
		if skipHref(href, nodeText(a)) {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			log.Debug().Err(err).Str("href", href).Msg("skipping unparsable link")
			continue
		}
		target := page.ResolveReference(ref)
		target.RawQuery = ""
		target.Fragment = ""

		switch {
		case IsMediaFile(target.Path):
			entries = append(entries, Entry{
				Name:     DisplayName(target.EscapedPath()),
				Location: target.String(),
				Path:     target.EscapedPath(),
			})
		case strings.HasSuffix(href, "/") && c.withinStart(target):
			entries = append(entries, Entry{
				Name:        DisplayName(strings.TrimSuffix(target.EscapedPath(), "/")),
				Location:    target.String(),
				Path:        target.EscapedPath(),
				IsDirectory: true,
			})
		}
	}
	return entries
}

// withinStart keeps the crawl on the starting host and below the starting
// path so absolute links in page chrome don't escape the tree.
func (c *httpConn) withinStart(u *url.URL) bool {
	if !strings.EqualFold(u.Host, c.start.Host) {
		return false
	}
	prefix := c.start.Path
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(u.Path, prefix) && u.Path != prefix
}

func skipHref(href, text string) bool {
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return true
	}
	if strings.Contains(href, "/../") || href == "../" || href == ".." {
		return true
	}
	return text == "Parent Directory" || text == "../ (Parent Directory)"
}

func findFileTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table && attr(n, "id") == "fileTable" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFileTable(child); found != nil {
			return found
		}
	}
	return nil
}

func anchors(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			out = append(out, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
