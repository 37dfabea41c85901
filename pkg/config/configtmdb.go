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

const (
	TrailerSourceYouTube = "youtube"
	TrailerSourceTMDB    = "tmdb"
)

type TMDB struct {
	APIKey            string  `toml:"api_key"`
	Language          string  `toml:"language,omitempty"`
	TrailerSource     string  `toml:"trailer_source,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
}

func (c *Instance) TMDBAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.TMDB.APIKey
}

func (c *Instance) SetTMDBAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.TMDB.APIKey = key
}

func (c *Instance) TMDBLanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.TMDB.Language == "" {
		return "en-US"
	}
	return c.vals.TMDB.Language
}

// TrailerSource returns which trailer reference is preferred. Anything other
// than "tmdb" is treated as "youtube".
func (c *Instance) TrailerSource() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.TMDB.TrailerSource == TrailerSourceTMDB {
		return TrailerSourceTMDB
	}
	return TrailerSourceYouTube
}

func (c *Instance) TMDBRequestsPerSecond() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.TMDB.RequestsPerSecond <= 0 {
		return 4
	}
	return c.vals.TMDB.RequestsPerSecond
}
