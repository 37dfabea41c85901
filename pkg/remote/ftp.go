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
	"fmt"
	"net"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog/log"
)

// FTPOpener dials a fresh control connection per Open call.
type FTPOpener struct {
	ep      Endpoint
	addr    string
	timeout time.Duration
}

func NewFTPOpener(ep Endpoint, timeout time.Duration) *FTPOpener {
	return &FTPOpener{
		ep:      ep,
		addr:    ftpAddr(ep.Host),
		timeout: timeout,
	}
}

func (o *FTPOpener) StartLocation() string {
	if o.ep.Path == "" {
		return "/"
	}
	return o.ep.Path
}

func (o *FTPOpener) Open(ctx context.Context) (Conn, error) {
	sc, err := ftp.Dial(o.addr, ftp.DialWithTimeout(o.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to dial ftp server %s: %w", o.addr, err)
	}

	user, pass := o.ep.Credentials()
	if err := sc.Login(user, pass); err != nil {
		if qErr := sc.Quit(); qErr != nil {
			log.Debug().Err(qErr).Msg("ftp quit after failed login")
		}
		return nil, fmt.Errorf("ftp login failed for %s: %w", o.addr, err)
	}

	return &ftpConn{sc: sc}, nil
}

type ftpConn struct {
	sc *ftp.ServerConn
}

func (c *ftpConn) ListChildren(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // cancellation passes through untouched
	}

	listing, err := c.sc.List(dir)
	if err == nil {
		return entriesFromList(dir, listing), nil
	}
	log.Debug().Err(err).Str("path", dir).Msg("ftp LIST failed, falling back to NLST")

	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // cancellation passes through untouched
	}
	names, err := c.sc.NameList(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return entriesFromNames(dir, names), nil
}

func (c *ftpConn) Close() error {
	if err := c.sc.Quit(); err != nil {
		return fmt.Errorf("ftp quit: %w", err)
	}
	return nil
}

func entriesFromList(dir string, listing []*ftp.Entry) []Entry {
	entries := make([]Entry, 0, len(listing))
	for _, e := range listing {
		name := path.Base(e.Name)
		if name == "." || name == ".." {
			continue
		}
		full := path.Join(dir, name)
		switch {
		case e.Type == ftp.EntryTypeFolder:
			entries = append(entries, Entry{Name: name, Location: full, Path: full, IsDirectory: true})
		case IsMediaFile(name):
			entries = append(entries, Entry{Name: name, Location: full, Path: full})
		case e.Type == ftp.EntryTypeLink:
			// Linked directories are not followed. A link back to an
			// ancestor would produce an endless chain of new paths.
			log.Debug().Str("path", full).Str("target", e.Target).Msg("skipping ftp link")
		}
	}
	return entries
}

// entriesFromNames classifies a bare NLST listing. Without type information
// a name with no dot is assumed to be a directory.
func entriesFromNames(dir string, names []string) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		name := path.Base(strings.ReplaceAll(n, "\\", "/"))
		if name == "." || name == ".." || name == "/" {
			continue
		}
		full := path.Join(dir, name)
		switch {
		case IsMediaFile(name):
			entries = append(entries, Entry{Name: name, Location: full, Path: full})
		case !strings.Contains(name, "."):
			entries = append(entries, Entry{Name: name, Location: full, Path: full, IsDirectory: true})
		}
	}
	return entries
}

func ftpAddr(host string) string {
	h := strings.TrimPrefix(host, "ftp://")
	h = strings.TrimRight(h, "/")
	if _, _, err := net.SplitHostPort(h); err == nil {
		return h
	}
	return net.JoinHostPort(h, DefaultFTPPort)
}
