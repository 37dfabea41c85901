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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fileTablePage = `<html><body>
<a href="/elsewhere/">Home</a>
<table id="fileTable">
<tr><td><a href="../">../ (Parent Directory)</a></td></tr>
<tr><td><a href="?C=N;O=D">Name</a></td></tr>
<tr><td><a href="Inception%20(2010).mkv">Inception (2010).mkv</a></td></tr>
<tr><td><a href="Show/">Show/</a></td></tr>
<tr><td><a href="readme.txt">readme.txt</a></td></tr>
</table>
</body></html>`

const apachePage = `<html><body><h1>Index of /movies/Show</h1>
<a href="/movies/">Parent Directory</a>
<a href="Season%2001/">Season 01/</a>
<a href="http://other.example/movies/Show/Extras/">Extras/</a>
<a href="trailer.MP4">trailer.MP4</a>
</body></html>`

func newListingServer(t *testing.T, user, pass string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movies/", func(w http.ResponseWriter, r *http.Request) {
		if user != "" {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		switch r.URL.Path {
		case "/movies/":
			_, _ = w.Write([]byte(fileTablePage))
		case "/movies/Show/":
			_, _ = w.Write([]byte(apachePage))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func openHTTP(t *testing.T, ep Endpoint) Conn {
	t.Helper()
	opener, err := NewHTTPOpener(ep, 5*time.Second)
	require.NoError(t, err)
	conn, err := opener.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHTTPListPrefersFileTable(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t, "", "")
	conn := openHTTP(t, Endpoint{Kind: KindHTTP, Host: srv.URL, Path: "/movies/", Anonymous: true})

	entries, err := conn.ListChildren(context.Background(), srv.URL+"/movies/")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{
		Name:     "Inception (2010).mkv",
		Location: srv.URL + "/movies/Inception%20(2010).mkv",
		Path:     "/movies/Inception%20(2010).mkv",
	}, entries[0])
	assert.True(t, entries[1].IsDirectory)
	assert.Equal(t, "Show", entries[1].Name)
	assert.Equal(t, srv.URL+"/movies/Show/", entries[1].Location)
}

func TestHTTPListPlainIndexSkipsParentAndForeignHosts(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t, "", "")
	conn := openHTTP(t, Endpoint{Kind: KindHTTP, Host: srv.URL, Path: "movies/", Anonymous: true})

	entries, err := conn.ListChildren(context.Background(), srv.URL+"/movies/Show/")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].IsDirectory)
	assert.Equal(t, "Season 01", entries[0].Name)
	assert.Equal(t, "/movies/Show/Season%2001/", entries[0].Path)

	assert.False(t, entries[1].IsDirectory)
	assert.Equal(t, "/movies/Show/trailer.MP4", entries[1].Path)
}

func TestHTTPOpenRequiresCredentials(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t, "bob", "hunter2")

	opener, err := NewHTTPOpener(Endpoint{Kind: KindHTTP, Host: srv.URL, Path: "/movies/", User: "bob", Pass: "wrong"}, 5*time.Second)
	require.NoError(t, err)
	_, err = opener.Open(context.Background())
	require.ErrorIs(t, err, ErrBadStatus)

	conn := openHTTP(t, Endpoint{Kind: KindHTTP, Host: srv.URL, Path: "/movies/", User: "bob", Pass: "hunter2"})
	entries, err := conn.ListChildren(context.Background(), srv.URL+"/movies/")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHTTPListMissingPage(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t, "", "")
	conn := openHTTP(t, Endpoint{Kind: KindHTTP, Host: srv.URL, Path: "/movies/", Anonymous: true})

	_, err := conn.ListChildren(context.Background(), srv.URL+"/movies/missing/")
	require.ErrorIs(t, err, ErrBadStatus)
}

func TestHTTPStartLocation(t *testing.T) {
	t.Parallel()

	opener, err := NewHTTPOpener(Endpoint{Kind: KindHTTP, Host: "media.local:8080/", Path: "/films/"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://media.local:8080/films/", opener.StartLocation())
}

func TestHTTPStartPathWithoutTrailingSlash(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/films/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/films/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<a href="Inception.mkv">Inception.mkv</a><a href="Show/">Show/</a>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ep := Endpoint{Kind: KindHTTP, Host: srv.URL, Path: "/films", Anonymous: true}
	opener, err := NewHTTPOpener(ep, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/films/", opener.StartLocation())

	conn := openHTTP(t, ep)
	want := []Entry{
		{Name: "Inception.mkv", Location: srv.URL + "/films/Inception.mkv", Path: "/films/Inception.mkv"},
		{Name: "Show", Location: srv.URL + "/films/Show/", Path: "/films/Show/", IsDirectory: true},
	}

	entries, err := conn.ListChildren(context.Background(), opener.StartLocation())
	require.NoError(t, err)
	assert.Equal(t, want, entries)

	// ServeMux redirects /films to /films/; links resolve against the
	// page that was served.
	entries, err = conn.ListChildren(context.Background(), srv.URL+"/films")
	require.NoError(t, err)
	assert.Equal(t, want, entries)
}

func TestSkipHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		text string
		want bool
	}{
		{href: "", want: true},
		{href: "?C=M;O=A", want: true},
		{href: "a/../b/", want: true},
		{href: "../", text: "../ (Parent Directory)", want: true},
		{href: "/up/", text: "Parent Directory", want: true},
		{href: "Movies/", text: "Movies/", want: false},
		{href: "film.mkv", text: "film.mkv", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, skipHref(tt.href, tt.text))
		})
	}
}
