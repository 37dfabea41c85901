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

package helpers

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// NewIndexServer serves directory index pages in the style of common web
// server auto-index modules. tree maps a directory path such as "/media/"
// to its entries; directory entries end in "/". Other paths return 404.
func NewIndexServer(t *testing.T, tree map[string][]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries, ok := tree[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, IndexPage(r.URL.Path, entries))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// IndexPage renders one listing with a parent link and a link per entry.
func IndexPage(dir string, entries []string) string {
	var b strings.Builder
	title := html.EscapeString(dir)
	_, _ = fmt.Fprintf(&b, "<html><head><title>Index of %s</title></head><body>\n", title)
	_, _ = fmt.Fprintf(&b, "<h1>Index of %s</h1><hr><pre>\n", title)
	b.WriteString("<a href=\"../\">../</a>\n")
	for _, name := range entries {
		href := url.PathEscape(strings.TrimSuffix(name, "/"))
		if strings.HasSuffix(name, "/") {
			href += "/"
		}
		_, _ = fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", href, html.EscapeString(name))
	}
	b.WriteString("</pre><hr></body></html>\n")
	return b.String()
}
