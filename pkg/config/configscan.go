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

package config

type Scan struct {
	CrawlWorkers  int `toml:"crawl_workers"`
	EnrichWorkers int `toml:"enrich_workers"`
}

// CrawlWorkers returns the number of concurrent listing connections used per
// scan. Values below 1 fall back to the default.
func (c *Instance) CrawlWorkers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scan.CrawlWorkers < 1 {
		return DefaultWorkerCount
	}
	return c.vals.Scan.CrawlWorkers
}

func (c *Instance) SetCrawlWorkers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scan.CrawlWorkers = n
}

// EnrichWorkers returns the size of the metadata lookup pool, independent of
// the crawl pool size.
func (c *Instance) EnrichWorkers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scan.EnrichWorkers < 1 {
		return DefaultWorkerCount
	}
	return c.vals.Scan.EnrichWorkers
}

func (c *Instance) SetEnrichWorkers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scan.EnrichWorkers = n
}
