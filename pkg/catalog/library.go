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
	"cmp"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const DefaultPageSize = 50

// Letters are the alphabetic buckets offered for browsing. "#" holds titles
// that do not start with a letter.
const Letters = "#ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type Filter string

const (
	FilterAll     Filter = "all"
	FilterPopular Filter = "popular"
	FilterAlpha   Filter = "alpha"
	FilterYear    Filter = "year"
	FilterGenre   Filter = "genre"
)

type Query struct {
	Kind     Kind
	Filter   Filter
	Value    string
	Page     int
	PageSize int
}

type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
}

// Episode is one playable episode file and the profile that serves it.
type Episode struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	ProfileID string `json:"profileId"`
}

// Library is a read-only view merging the catalogs of several profiles.
// Movies with the same provider ID share one entry holding every source;
// shows share one entry holding the union of their seasons.
type Library struct {
	movies map[string]*MovieEntry
	shows  map[string]*TvShowEntry
	// owners maps show ID and episode path to the serving profile.
	owners map[string]map[string]string
}

// NewLibrary aggregates catalogs keyed by profile ID. The inputs are not
// modified.
func NewLibrary(catalogs map[string]*Catalog) *Library {
	lib := &Library{
		movies: make(map[string]*MovieEntry),
		shows:  make(map[string]*TvShowEntry),
		owners: make(map[string]map[string]string),
	}

	profileIDs := make([]string, 0, len(catalogs))
	for id := range catalogs {
		profileIDs = append(profileIDs, id)
	}
	slices.Sort(profileIDs)

	for _, profileID := range profileIDs {
		c := catalogs[profileID].Clone()
		for id, m := range c.Movies {
			for i := range m.Sources {
				if m.Sources[i].ProfileID == "" {
					m.Sources[i].ProfileID = profileID
				}
			}
			agg, ok := lib.movies[id]
			if !ok {
				lib.movies[id] = m
				continue
			}
			for _, src := range m.Sources {
				if !hasSourceFrom(agg, src) {
					agg.Sources = append(agg.Sources, src)
				}
			}
		}

		for id, s := range c.TvShows {
			owner := s.ProfileID
			if owner == "" {
				owner = profileID
			}
			if lib.owners[id] == nil {
				lib.owners[id] = make(map[string]string)
			}
			agg, ok := lib.shows[id]
			if !ok {
				s.ProfileID = owner
				lib.shows[id] = s
				agg = s
			}
			for season, eps := range s.Seasons {
				for _, p := range eps {
					if _, seen := lib.owners[id][p]; !seen {
						lib.owners[id][p] = owner
						if agg != s {
							agg.Seasons[season] = append(agg.Seasons[season], p)
						}
					}
				}
			}
		}
	}
	return lib
}

func hasSourceFrom(m *MovieEntry, src Source) bool {
	return slices.ContainsFunc(m.Sources, func(s Source) bool {
		return s.Path == src.Path && s.ProfileID == src.ProfileID
	})
}

func (l *Library) Movie(id string) (*MovieEntry, bool) {
	m, ok := l.movies[id]
	return m, ok
}

func (l *Library) Show(id string) (*TvShowEntry, bool) {
	s, ok := l.shows[id]
	return s, ok
}

// Browse filters, sorts and paginates one media kind.
func (l *Library) Browse(q Query) ([]CatalogEntry, PageInfo) {
	items := l.entries(q.Kind)
	items = slices.DeleteFunc(items, func(e CatalogEntry) bool { return !matches(e, q) })

	if q.Filter == FilterPopular {
		slices.SortStableFunc(items, func(a, b CatalogEntry) int {
			return cmp.Or(cmp.Compare(b.Meta().Rating, a.Meta().Rating), compareTitles(a, b))
		})
	} else {
		slices.SortStableFunc(items, compareTitles)
	}
	return Paginate(items, q.Page, q.PageSize)
}

// Search returns movies and shows whose title contains term, ignoring case
// and accents, sorted by title.
func (l *Library) Search(term string) []CatalogEntry {
	needle := fold(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	items := append(l.entries(KindMovie), l.entries(KindTVShow)...)
	items = slices.DeleteFunc(items, func(e CatalogEntry) bool {
		return !strings.Contains(fold(e.Meta().Title), needle)
	})
	slices.SortStableFunc(items, compareTitles)
	return items
}

// Years lists the distinct release years of a kind, newest first, skipping
// unknown years.
func (l *Library) Years(kind Kind) []int {
	seen := make(map[int]struct{})
	for _, e := range l.entries(kind) {
		if y := e.Meta().Year; y > 0 {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	return years
}

func (l *Library) Genres(kind Kind) []string {
	seen := make(map[string]struct{})
	for _, e := range l.entries(kind) {
		for _, g := range e.Meta().Genres {
			if g = strings.TrimSpace(g); g != "" {
				seen[g] = struct{}{}
			}
		}
	}
	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	slices.Sort(genres)
	return genres
}

// Seasons returns a show's sorted season names.
func (l *Library) Seasons(showID string) ([]string, bool) {
	s, ok := l.shows[showID]
	if !ok {
		return nil, false
	}
	return s.SeasonNames(), true
}

// Episodes returns a season's episodes sorted by path.
func (l *Library) Episodes(showID, season string) ([]Episode, bool) {
	s, ok := l.shows[showID]
	if !ok {
		return nil, false
	}
	paths, ok := s.Seasons[season]
	if !ok {
		return nil, false
	}
	sorted := slices.Clone(paths)
	slices.Sort(sorted)

	out := make([]Episode, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, Episode{
			Path:      p,
			Filename:  path.Base(p),
			ProfileID: l.owners[showID][p],
		})
	}
	return out, true
}

// Paginate returns the 1-based page of items. Out of range pages are empty.
func Paginate[T any](items []T, page, pageSize int) ([]T, PageInfo) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	page = max(page, 1)

	info := PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      len(items),
		TotalPages: (len(items) + pageSize - 1) / pageSize,
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}, info
	}
	end := min(start+pageSize, len(items))
	info.HasNext = end < len(items)
	return items[start:end], info
}

func (l *Library) entries(kind Kind) []CatalogEntry {
	var out []CatalogEntry
	switch kind {
	case KindMovie:
		out = make([]CatalogEntry, 0, len(l.movies))
		for _, m := range l.movies {
			out = append(out, m)
		}
	case KindTVShow:
		out = make([]CatalogEntry, 0, len(l.shows))
		for _, s := range l.shows {
			out = append(out, s)
		}
	}
	return out
}

func matches(e CatalogEntry, q Query) bool {
	info := e.Meta()
	switch q.Filter {
	case FilterYear:
		y, err := strconv.Atoi(q.Value)
		return err == nil && info.Year == y
	case FilterGenre:
		return slices.ContainsFunc(info.Genres, func(g string) bool {
			return strings.EqualFold(strings.TrimSpace(g), q.Value)
		})
	case FilterAlpha:
		return strings.EqualFold(LetterOf(info.Title), q.Value)
	default:
		return true
	}
}

// LetterOf returns the alphabetic bucket of a title: its first letter with
// accents removed and upper-cased, or "#".
func LetterOf(title string) string {
	r, _ := utf8.DecodeRuneInString(fold(strings.TrimSpace(title)))
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return "#"
	}
	return string(unicode.ToUpper(r))
}

func compareTitles(a, b CatalogEntry) int {
	return cmp.Or(
		cmp.Compare(fold(a.Meta().Title), fold(b.Meta().Title)),
		cmp.Compare(a.ID(), b.ID()),
	)
}

// fold lower-cases s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.ToLower(s)
}
