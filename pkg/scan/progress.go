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

package scan

import (
	"fmt"
	"path"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/crawler"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
)

// ProgressTracker holds the latest progress of one scan. Workers update it
// without blocking and the supervisor publishes it on its own schedule, so
// intermediate snapshots may be skipped.
type ProgressTracker struct {
	progress Event
	version  uint64
	sent     uint64
	mu       syncutil.Mutex
}

func NewProgressTracker(sessionID, profileID string) *ProgressTracker {
	return &ProgressTracker{
		progress: Event{
			Status:    StatusProgress,
			SessionID: sessionID,
			ProfileID: profileID,
			Phase:     PhaseCrawl,
		},
	}
}

// Update applies fn to the current snapshot.
func (pt *ProgressTracker) Update(fn func(*Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	fn(&pt.progress)
	pt.version++
}

// Get returns a copy of the current snapshot.
func (pt *ProgressTracker) Get() Event {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.progress
}

// Pending returns the snapshot if it changed since the last call that
// returned true.
func (pt *ProgressTracker) Pending() (Event, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.version == pt.sent {
		return Event{}, false
	}
	pt.sent = pt.version
	return pt.progress, true
}

// SetCrawl records a crawl snapshot. Percent is already in the crawl range.
func (pt *ProgressTracker) SetCrawl(p crawler.Progress) {
	pt.Update(func(e *Event) {
		e.Phase = PhaseCrawl
		e.Percent = p.Percent
		e.Found = p.Found
		e.Heading = fmt.Sprintf("Found %d video files...", p.Found)
		e.Detail = "Scanning: " + p.Location
	})
}

// SetEnrich records that processed of total files have been looked up and
// names the file being worked on.
func (pt *ProgressTracker) SetEnrich(processed, total int, current string) {
	pt.Update(func(e *Event) {
		e.Phase = PhaseEnrich
		e.Percent = EnrichPercent(processed, total)
		e.Heading = fmt.Sprintf("Processing %d of %d files...", processed, total)
		if current != "" {
			e.Detail = "Processing: " + path.Base(remote.DecodeLocation(current))
		}
	})
}

// EnrichPercent maps enrichment progress onto the upper half of the scan's
// percentage range.
func EnrichPercent(processed, total int) int {
	if total <= 0 {
		return 100
	}
	processed = min(max(processed, 0), total)
	return 50 + processed*50/total
}
