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

// Package scan runs library scans: crawl a profile's server, work out which
// files are new, look each one up with the metadata provider and merge the
// results into the profile's catalog.
//
// A scan runs in two phases. Cancelling during the crawl discards the whole
// scan and leaves the catalog file untouched. Cancelling during enrichment
// still saves everything merged before the cancellation was seen.
package scan

import (
	"errors"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/metadata"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
)

type Mode string

const (
	// ModeFull rebuilds the catalog from every file found.
	ModeFull Mode = "full"
	// ModeIncremental only enriches files the catalog does not have yet.
	ModeIncremental Mode = "incremental"
)

// ParseMode accepts "full" and "incremental". Anything else is an error.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeIncremental:
		return Mode(s), nil
	default:
		return "", ErrUnknownMode
	}
}

type Status string

const (
	StatusStarted   Status = "started"
	StatusProgress  Status = "progress"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

type Phase string

const (
	PhaseCrawl  Phase = "crawl"
	PhaseEnrich Phase = "enrich"
)

const (
	DefaultWorkers      = 4
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 200 * time.Millisecond
)

var (
	ErrScanInProgress = errors.New("a scan is already running for this profile")
	ErrUnknownMode    = errors.New("unknown scan mode")
	ErrNoProvider     = errors.New("no metadata provider configured")
)

// Event is one entry of a scan's event stream.
type Event struct {
	Status    Status `json:"status"`
	SessionID string `json:"sessionId"`
	ProfileID string `json:"profileId"`
	Phase     Phase  `json:"phase,omitempty"`
	// Heading and Detail are the two display lines of a progress update.
	Heading string `json:"heading,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
	Percent int    `json:"percent"`
	Found   int    `json:"found"`
	// Added is the number of files merged into the catalog. Set on the
	// final event.
	Added int `json:"added"`
}

// Sink receives scan events. It is only ever called from the scan's
// supervisor goroutine.
type Sink func(Event)

// Config is everything one scan needs. Nothing is read from global state.
type Config struct {
	Provider metadata.Provider
	// Opener overrides the connection built from Profile. Used by tests
	// and by callers with custom transports.
	Opener        remote.Opener
	Mode          Mode
	Profile       profiles.Profile
	CrawlWorkers  int
	EnrichWorkers int
	// Precheck runs under the manager lock before the scan is registered.
	// The scan is refused if it returns an error.
	Precheck func() error
	// Timeout bounds each connection attempt and listing.
	Timeout time.Duration
}

func (c *Config) opener() (remote.Opener, error) {
	if c.Opener != nil {
		return c.Opener, nil
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	//nolint:wrapcheck // ErrUnsupportedKind is already descriptive
	return remote.NewOpener(c.Profile.Endpoint(), timeout)
}

// Result summarises a scan that ran to an end state.
type Result struct {
	Status Status
	// Found is the number of media files the crawl discovered.
	Found int
	// NetNew is the number of those files that went to enrichment.
	NetNew int
	// Added is the number of files merged into the catalog.
	Added int
	// Missed is the number of files the provider had no match for.
	Missed int
	// Saved reports whether the catalog file was written.
	Saved bool
}
