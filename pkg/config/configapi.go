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

type API struct {
	AllowedIPs        []string `toml:"allowed_ips,omitempty"`
	Port              int      `toml:"port"`
	PageSize          int      `toml:"page_size,omitempty"`
	RequestsPerMinute int      `toml:"requests_per_minute,omitempty"`
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.Port == 0 {
		return DefaultAPIPort
	}
	return c.vals.API.Port
}

// PageSize is the number of catalog entries returned per browse page.
func (c *Instance) PageSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.PageSize < 1 {
		return DefaultPageSize
	}
	return c.vals.API.PageSize
}

// AllowedIPs lists the addresses and CIDRs allowed to use the API. Empty
// allows all clients.
func (c *Instance) AllowedIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.API.AllowedIPs...)
}

func (c *Instance) RequestsPerMinute() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.RequestsPerMinute
}
