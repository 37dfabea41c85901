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

// Package catalog holds the per-profile library of enriched movies and TV
// shows, the incremental differ and merger that build it, and the
// read-side views the front end browses.
package catalog

import (
	"path"
	"slices"
)

type Kind string

const (
	KindMovie  Kind = "movie"
	KindTVShow Kind = "tv"
)

// Info is the descriptive metadata for a title. The provider's newest
// answer always replaces the stored one.
type Info struct {
	Title         string   `json:"title"`
	OriginalTitle string   `json:"originalTitle,omitempty"`
	Plot          string   `json:"plot,omitempty"`
	TrailerRef    string   `json:"trailerRef,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Year          int      `json:"year,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
}

type Art struct {
	Poster string `json:"poster,omitempty"`
	Fanart string `json:"fanart,omitempty"`
}

// Source is one file of a movie on one server.
type Source struct {
	Path      string `json:"path" csv:"path"`
	Filename  string `json:"filename" csv:"filename"`
	ProfileID string `json:"profileId" csv:"profile_id"`
}

// NewSource builds a Source whose filename is the base of p.
func NewSource(p, profileID string) Source {
	return Source{Path: p, Filename: path.Base(p), ProfileID: profileID}
}

type MovieEntry struct {
	ProviderID string   `json:"providerId"`
	Sources    []Source `json:"sources"`
	Art        Art      `json:"art"`
	Info       Info     `json:"info"`
}

// TvShowEntry maps season names like "Season 01" to episode paths. Paths
// within a season are unique.
type TvShowEntry struct {
	Seasons    map[string][]string `json:"seasons"`
	ProviderID string              `json:"providerId"`
	ProfileID  string              `json:"profileId"`
	Art        Art                 `json:"art"`
	Info       Info                `json:"info"`
}

// CatalogEntry is either a *MovieEntry or a *TvShowEntry.
type CatalogEntry interface {
	ID() string
	Kind() Kind
	Meta() Info
	Artwork() Art
	// Paths lists every media path the entry references.
	Paths() []string
	isCatalogEntry()
}

func (m *MovieEntry) ID() string   { return m.ProviderID }
func (*MovieEntry) Kind() Kind     { return KindMovie }
func (m *MovieEntry) Meta() Info   { return m.Info }
func (m *MovieEntry) Artwork() Art { return m.Art }

func (*MovieEntry) isCatalogEntry() {}

func (m *MovieEntry) Paths() []string {
	out := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		out = append(out, s.Path)
	}
	return out
}

// HasSource reports whether a source with path p is already recorded.
func (m *MovieEntry) HasSource(p string) bool {
	return slices.ContainsFunc(m.Sources, func(s Source) bool { return s.Path == p })
}

func (s *TvShowEntry) ID() string   { return s.ProviderID }
func (*TvShowEntry) Kind() Kind     { return KindTVShow }
func (s *TvShowEntry) Meta() Info   { return s.Info }
func (s *TvShowEntry) Artwork() Art { return s.Art }

func (*TvShowEntry) isCatalogEntry() {}

func (s *TvShowEntry) Paths() []string {
	var out []string
	for _, eps := range s.Seasons {
		out = append(out, eps...)
	}
	return out
}

// SeasonNames returns the show's season names in sorted order.
func (s *TvShowEntry) SeasonNames() []string {
	names := make([]string, 0, len(s.Seasons))
	for name := range s.Seasons {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EpisodeCount is the number of episode paths across all seasons.
func (s *TvShowEntry) EpisodeCount() int {
	n := 0
	for _, eps := range s.Seasons {
		n += len(eps)
	}
	return n
}

// Catalog is one profile's library, keyed by provider ID per media kind.
type Catalog struct {
	Movies  map[string]*MovieEntry  `json:"movies"`
	TvShows map[string]*TvShowEntry `json:"tvShows"`
}

func New() *Catalog {
	return &Catalog{
		Movies:  make(map[string]*MovieEntry),
		TvShows: make(map[string]*TvShowEntry),
	}
}

// Entries returns every movie and show in the catalog, in no fixed order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(c.Movies)+len(c.TvShows))
	for _, m := range c.Movies {
		out = append(out, m)
	}
	for _, s := range c.TvShows {
		out = append(out, s)
	}
	return out
}

// Clone returns a deep copy of c.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for id, m := range c.Movies {
		mc := *m
		mc.Sources = slices.Clone(m.Sources)
		mc.Info.Genres = slices.Clone(m.Info.Genres)
		out.Movies[id] = &mc
	}
	for id, s := range c.TvShows {
		sc := *s
		sc.Info.Genres = slices.Clone(s.Info.Genres)
		sc.Seasons = make(map[string][]string, len(s.Seasons))
		for name, eps := range s.Seasons {
			sc.Seasons[name] = slices.Clone(eps)
		}
		out.TvShows[id] = &sc
	}
	return out
}

// normalize fills nil maps left by hand-edited or older catalog files.
func (c *Catalog) normalize() {
	if c.Movies == nil {
		c.Movies = make(map[string]*MovieEntry)
	}
	if c.TvShows == nil {
		c.TvShows = make(map[string]*TvShowEntry)
	}
	for id, m := range c.Movies {
		if m == nil {
			delete(c.Movies, id)
			continue
		}
		if m.ProviderID == "" {
			m.ProviderID = id
		}
	}
	for id, s := range c.TvShows {
		if s == nil {
			delete(c.TvShows, id)
			continue
		}
		if s.ProviderID == "" {
			s.ProviderID = id
		}
		if s.Seasons == nil {
			s.Seasons = make(map[string][]string)
		}
	}
}
