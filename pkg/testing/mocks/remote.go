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

package mocks

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
)

var ErrAuthFailed = errors.New("530 login incorrect")

// FakeRemote is an in-memory directory tree implementing remote.Opener.
// Directory listings apply the same media/sub-location filtering as the
// real FTP and HTTP connections.
type FakeRemote struct {
	dirs   map[string][]remote.Entry
	visits map[string]int
	// OpenErr, when set, is returned by every Open call.
	OpenErr error
	// ListErr maps a location to the error its listing returns.
	ListErr map[string]error
	// BeforeList runs before each listing, outside the fake's lock.
	BeforeList func(ctx context.Context, location string)
	start      string
	mu         sync.Mutex
	opens      atomic.Int32
	closes     atomic.Int32
}

// NewFakeRemote builds a tree rooted at start containing the given file
// paths. Intermediate directories are created as needed.
func NewFakeRemote(start string, files ...string) *FakeRemote {
	f := &FakeRemote{
		start:   start,
		dirs:    map[string][]remote.Entry{start: nil},
		visits:  make(map[string]int),
		ListErr: make(map[string]error),
	}
	for _, p := range files {
		f.AddFile(p)
	}
	return f
}

// AddFile adds a file and any missing parent directories below start.
func (f *FakeRemote) AddFile(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := path.Dir(p)
	if f.hasChild(dir, p) {
		return
	}
	f.addEntry(dir, remote.Entry{Name: path.Base(p), Location: p, Path: p})
	for dir != f.start && dir != "/" && dir != "." {
		parent := path.Dir(dir)
		if f.hasChild(parent, dir) {
			break
		}
		f.addEntry(parent, remote.Entry{Name: path.Base(dir), Location: dir, Path: dir, IsDirectory: true})
		dir = parent
	}
}

// AddLink adds a directory entry in dir whose location is target, which can
// be used to build cycles.
func (f *FakeRemote) AddLink(dir, name, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addEntry(dir, remote.Entry{Name: name, Location: target, Path: target, IsDirectory: true})
}

func (f *FakeRemote) addEntry(dir string, e remote.Entry) {
	if _, ok := f.dirs[e.Location]; e.IsDirectory && !ok {
		f.dirs[e.Location] = nil
	}
	f.dirs[dir] = append(f.dirs[dir], e)
}

func (f *FakeRemote) hasChild(dir, loc string) bool {
	for _, e := range f.dirs[dir] {
		if e.Location == loc {
			return true
		}
	}
	return false
}

func (f *FakeRemote) StartLocation() string {
	return f.start
}

func (f *FakeRemote) Open(ctx context.Context) (remote.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // test fake
	}
	f.opens.Add(1)
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	return &fakeConn{f: f}, nil
}

// Visits returns how many times each location has been listed.
func (f *FakeRemote) Visits() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.visits))
	for k, v := range f.visits {
		out[k] = v
	}
	return out
}

// MediaPaths returns every media file in the tree, sorted.
func (f *FakeRemote) MediaPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, entries := range f.dirs {
		for _, e := range entries {
			if !e.IsDirectory && remote.IsMediaFile(e.Name) {
				out = append(out, e.Path)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (f *FakeRemote) Opens() int  { return int(f.opens.Load()) }
func (f *FakeRemote) Closes() int { return int(f.closes.Load()) }

type fakeConn struct {
	f *FakeRemote
}

func (c *fakeConn) ListChildren(ctx context.Context, location string) ([]remote.Entry, error) {
	if c.f.BeforeList != nil {
		c.f.BeforeList(ctx, location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // test fake
	}

	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.visits[location]++

	if err := c.f.ListErr[location]; err != nil {
		return nil, err
	}
	entries, ok := c.f.dirs[location]
	if !ok {
		return nil, errors.New("550 no such directory: " + location)
	}
	out := make([]remote.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDirectory || remote.IsMediaFile(e.Name) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *fakeConn) Close() error {
	c.f.closes.Add(1)
	return nil
}
