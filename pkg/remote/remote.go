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

// Package remote lists directories on media servers. An Opener produces one
// Conn per crawl worker; a Conn lists the children of a location and reports
// each child as either a media file or a sub-location.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

type Kind string

const (
	KindFTP  Kind = "ftp"
	KindHTTP Kind = "http"
)

const (
	DefaultFTPPort = "21"
	anonymousUser  = "anonymous"
)

var ErrUnsupportedKind = errors.New("unsupported remote kind")

// MediaExtensions are the lower-case file extensions treated as video files.
var MediaExtensions = []string{
	".mkv", ".mp4", ".avi", ".mov", ".flv", ".wmv", ".ts",
	".vob", ".mpg", ".mpeg", ".3gp", ".webm",
}

// Endpoint is everything needed to reach one remote server.
type Endpoint struct {
	Kind      Kind
	Host      string
	Path      string
	User      string
	Pass      string
	Anonymous bool
}

// Credentials returns the user and password to present to the server.
// Anonymous FTP logins use the conventional "anonymous" user; anonymous
// HTTP endpoints send no credentials at all.
func (e Endpoint) Credentials() (user, pass string) {
	if !e.Anonymous {
		return e.User, e.Pass
	}
	if e.Kind == KindFTP {
		return anonymousUser, ""
	}
	return "", ""
}

// Entry is one child of a listed location.
type Entry struct {
	// Name is the decoded base name, for logs and display.
	Name string
	// Location is what to list next when the entry is a directory.
	Location string
	// Path is the media path stored in the catalog.
	Path        string
	IsDirectory bool
}

// Conn is a single open connection to a remote server. A Conn is used by
// one goroutine at a time.
type Conn interface {
	ListChildren(ctx context.Context, location string) ([]Entry, error)
	Close() error
}

// Opener establishes connections to a remote server.
type Opener interface {
	Open(ctx context.Context) (Conn, error)
	// StartLocation is the first location a crawl lists.
	StartLocation() string
}

// NewOpener returns the Opener matching the endpoint's kind.
func NewOpener(ep Endpoint, timeout time.Duration) (Opener, error) {
	switch ep.Kind {
	case KindFTP:
		return NewFTPOpener(ep, timeout), nil
	case KindHTTP:
		return NewHTTPOpener(ep, timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, ep.Kind)
	}
}

// IsMediaFile reports whether name ends in one of MediaExtensions.
func IsMediaFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range MediaExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// PlayableURL builds the URL a player opens to stream mediaPath from ep,
// with credentials embedded in the userinfo.
func PlayableURL(ep Endpoint, mediaPath string) (string, error) {
	user, pass := ep.Credentials()
	switch ep.Kind {
	case KindFTP:
		u := url.URL{
			Scheme: "ftp",
			User:   url.UserPassword(user, pass),
			Host:   strings.TrimRight(strings.TrimPrefix(ep.Host, "ftp://"), "/"),
			Path:   "/" + strings.TrimPrefix(mediaPath, "/"),
		}
		return u.String(), nil
	case KindHTTP:
		base, err := parseBaseURL(ep.Host)
		if err != nil {
			return "", err
		}
		u := url.URL{Scheme: base.Scheme, Host: base.Host}
		if user != "" {
			u.User = url.UserPassword(user, pass)
		}
		// HTTP media paths are stored already escaped.
		return u.String() + "/" + strings.TrimPrefix(mediaPath, "/"), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, ep.Kind)
	}
}

// DisplayName decodes the base name of a stored media path.
func DisplayName(p string) string {
	base := path.Base(p)
	if decoded, err := url.PathUnescape(base); err == nil {
		return decoded
	}
	return base
}

// DecodeLocation unescapes a location for display, returning it unchanged
// when it is not valid percent-encoding.
func DecodeLocation(loc string) string {
	if decoded, err := url.PathUnescape(loc); err == nil {
		return decoded
	}
	return loc
}

func parseBaseURL(host string) (*url.URL, error) {
	raw := strings.TrimRight(host, "/")
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid host %q: missing hostname", host)
	}
	return u, nil
}
