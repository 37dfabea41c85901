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

package crawler

import (
	"context"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
)

type PopStatus int

const (
	// Popped means a location was returned and must be marked Done.
	Popped PopStatus = iota
	// Empty means the wait timed out while other locations were still
	// being listed; more work may arrive.
	Empty
	// Drained means the queue is empty and nothing is in flight.
	Drained
	// Cancelled means the context ended while waiting.
	Cancelled
)

// Frontier is the queue of locations still to list plus the set of every
// location ever queued. A location is queued at most once per Frontier.
type Frontier struct {
	seen     map[string]struct{}
	changed  chan struct{}
	queue    []string
	inFlight int
	mu       syncutil.Mutex
}

// NewFrontier returns a Frontier seeded with start.
func NewFrontier(start string) *Frontier {
	return &Frontier{
		seen:    map[string]struct{}{start: {}},
		queue:   []string{start},
		changed: make(chan struct{}),
	}
}

// Push queues loc unless it has been seen before. The seen check and insert
// happen under one lock.
func (f *Frontier) Push(loc string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[loc]; ok {
		return false
	}
	f.seen[loc] = struct{}{}
	f.queue = append(f.queue, loc)
	f.broadcastLocked()
	return true
}

// Pop takes the next location, waiting up to timeout for one to arrive.
func (f *Frontier) Pop(ctx context.Context, timeout time.Duration) (string, PopStatus) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			loc := f.queue[0]
			f.queue[0] = ""
			f.queue = f.queue[1:]
			f.inFlight++
			f.mu.Unlock()
			return loc, Popped
		}
		if f.inFlight == 0 {
			f.mu.Unlock()
			return "", Drained
		}
		changed := f.changed
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", Cancelled
		case <-timer.C:
			return "", Empty
		case <-changed:
		}
	}
}

// Done marks a popped location as fully processed. Children must be pushed
// before Done so that waiting workers never see a false drain.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight > 0 {
		f.inFlight--
	}
	f.broadcastLocked()
}

// Counts returns the number of locations ever queued and the number still
// waiting in the queue.
func (f *Frontier) Counts() (discovered, pending int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen), len(f.queue)
}

func (f *Frontier) broadcastLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}
