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

package catalog

import (
	"slices"
)

// ExistingPaths flattens every movie source path and every episode path in
// the catalog into a set.
func (c *Catalog) ExistingPaths() map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range c.Movies {
		for _, s := range m.Sources {
			out[s.Path] = struct{}{}
		}
	}
	for _, show := range c.TvShows {
		for _, eps := range show.Seasons {
			for _, p := range eps {
				out[p] = struct{}{}
			}
		}
	}
	return out
}

// Diff returns the paths in raw that are not in existing. Duplicates in raw
// are reported once. The result is a subset of raw and disjoint from
// existing.
func Diff(raw []string, existing map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if _, ok := existing[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// MergeMovie records src under providerID. The entry's info and art are
// replaced with the given values; the source is appended only if its path
// is new. It reports whether a source was added.
func (c *Catalog) MergeMovie(providerID string, info Info, art Art, src Source) bool {
	m, ok := c.Movies[providerID]
	if !ok {
		c.Movies[providerID] = &MovieEntry{
			ProviderID: providerID,
			Info:       info,
			Art:        art,
			Sources:    []Source{src},
		}
		return true
	}

	m.Info = info
	m.Art = art
	if m.HasSource(src.Path) {
		return false
	}
	m.Sources = append(m.Sources, src)
	return true
}

// MergeEpisode records episodePath in the named season of providerID,
// creating the show if needed. Info and art are replaced with the given
// values. It reports whether the path was added.
func (c *Catalog) MergeEpisode(
	providerID string,
	info Info,
	art Art,
	season string,
	episodePath string,
	profileID string,
) bool {
	show, ok := c.TvShows[providerID]
	if !ok {
		show = &TvShowEntry{
			ProviderID: providerID,
			ProfileID:  profileID,
			Seasons:    make(map[string][]string),
		}
		c.TvShows[providerID] = show
	}
	show.Info = info
	show.Art = art

	if slices.Contains(show.Seasons[season], episodePath) {
		return false
	}
	show.Seasons[season] = append(show.Seasons[season], episodePath)
	return true
}
