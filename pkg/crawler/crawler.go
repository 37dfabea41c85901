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

// Package crawler walks a remote directory tree breadth-first with a fixed
// number of workers, each holding its own connection, and collects every
// media file path it finds.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CrawlPercentMax is the top of the progress range reported while crawling.
// The enrichment phase reports the range above it.
const CrawlPercentMax = 49

const DefaultPollInterval = time.Second

var ErrTotalConnectionFailure = errors.New("all crawl workers failed to connect")

// Progress is a snapshot of a running crawl.
type Progress struct {
	Location string
	Percent  int
	Found    int
}

type Options struct {
	// OnProgress receives a snapshot every time a worker takes a location.
	// It is called from worker goroutines and must not block.
	OnProgress func(Progress)
	// Workers is the number of concurrent connections. Values below one
	// are treated as one.
	Workers int
	// PollInterval bounds how long an idle worker waits for new work
	// before re-checking for cancellation.
	PollInterval time.Duration
}

// Run crawls from the opener's start location and returns the set of media
// paths found, in no particular order.
//
// If every worker fails to connect Run returns ErrTotalConnectionFailure. A
// cancelled crawl returns the context's error and no paths. Listing failures
// at individual locations are logged and that branch is skipped.
func Run(ctx context.Context, opener remote.Opener, opts Options) ([]string, error) {
	workers := max(opts.Workers, 1)
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	c := &crawl{
		opener:     opener,
		frontier:   NewFrontier(opener.StartLocation()),
		results:    newResultSet(),
		onProgress: opts.OnProgress,
		poll:       poll,
	}

	log.Info().
		Str("start", opener.StartLocation()).
		Int("workers", workers).
		Msg("starting crawl")

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			c.worker(ctx, i)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Info().Int("found", c.results.Len()).Msg("crawl cancelled")
		return nil, err //nolint:wrapcheck // callers check for context.Canceled
	}

	if failed := int(c.connErrors.Load()); failed == workers {
		return nil, fmt.Errorf("%w: %d of %d", ErrTotalConnectionFailure, failed, workers)
	}

	paths := c.results.Paths()
	discovered, _ := c.frontier.Counts()
	log.Info().
		Int("found", len(paths)).
		Int("locations", discovered).
		Int32("connection_errors", c.connErrors.Load()).
		Msg("crawl finished")
	return paths, nil
}

type crawl struct {
	opener     remote.Opener
	frontier   *Frontier
	results    *resultSet
	onProgress func(Progress)
	poll       time.Duration
	connErrors atomic.Int32
}

func (c *crawl) worker(ctx context.Context, id int) {
	conn, err := c.opener.Open(ctx)
	if err != nil {
		c.connErrors.Add(1)
		log.Error().Err(err).Int("worker_id", id).Msg("crawl worker failed to connect")
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Int("worker_id", id).Msg("error closing connection")
		}
	}()

	log.Debug().Int("worker_id", id).Msg("crawl worker started")

	for ctx.Err() == nil {
		loc, status := c.frontier.Pop(ctx, c.poll)
		switch status {
		case Popped:
			c.visit(ctx, conn, id, loc)
			c.frontier.Done()
		case Empty:
			continue
		case Drained, Cancelled:
			log.Debug().Int("worker_id", id).Msg("crawl worker stopped")
			return
		}
	}
}

func (c *crawl) visit(ctx context.Context, conn remote.Conn, id int, loc string) {
	c.report(loc)

	if ctx.Err() != nil {
		return
	}
	entries, err := conn.ListChildren(ctx, loc)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Int("worker_id", id).Str("location", loc).Msg("failed to list location")
		}
		return
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if e.IsDirectory {
			c.frontier.Push(e.Location)
			continue
		}
		c.results.Add(e.Path)
	}
}

func (c *crawl) report(loc string) {
	if c.onProgress == nil {
		return
	}
	discovered, pending := c.frontier.Counts()
	percent := 0
	if discovered > 0 {
		scanned := discovered - pending
		percent = scanned * CrawlPercentMax / discovered
	}
	c.onProgress(Progress{
		Location: remote.DecodeLocation(loc),
		Percent:  percent,
		Found:    c.results.Len(),
	})
}

type resultSet struct {
	index map[string]struct{}
	paths []string
	mu    syncutil.Mutex
}

func newResultSet() *resultSet {
	return &resultSet{index: make(map[string]struct{})}
}

func (r *resultSet) Add(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[p]; ok {
		return
	}
	r.index[p] = struct{}{}
	r.paths = append(r.paths, p)
}

func (r *resultSet) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func (r *resultSet) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}
