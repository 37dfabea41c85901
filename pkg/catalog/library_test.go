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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movie(id, title string, year int, rating float64, genres ...string) *MovieEntry {
	return &MovieEntry{
		ProviderID: id,
		Info:       Info{Title: title, Year: year, Rating: rating, Genres: genres},
	}
}

func libraryFixture() *Library {
	p1 := New()
	p1.Movies["1"] = movie("1", "Alien", 1979, 8.1, "Horror", "Science Fiction")
	p1.Movies["2"] = movie("2", "Ébano", 2010, 6.0, "Drama")
	p1.Movies["3"] = movie("3", "12 Monkeys", 1995, 7.6, "Science Fiction")
	p1.Movies["1"].Sources = []Source{{Path: "/m/Alien.mkv", Filename: "Alien.mkv"}}
	p1.MergeEpisode("10", Info{Title: "Dark", Year: 2017}, Art{}, "Season 01", "/tv/Dark/Season 01/e2.mkv", "p1")
	p1.MergeEpisode("10", Info{Title: "Dark", Year: 2017}, Art{}, "Season 01", "/tv/Dark/Season 01/e1.mkv", "p1")

	p2 := New()
	p2.Movies["1"] = movie("1", "Alien", 1979, 8.1, "Horror")
	p2.Movies["1"].Sources = []Source{{Path: "/films/Alien.1979.mkv", Filename: "Alien.1979.mkv"}}
	p2.Movies["4"] = movie("4", "Brazil", 1985, 7.8, "Comedy")
	p2.MergeEpisode("10", Info{Title: "Dark", Year: 2017}, Art{}, "Season 02", "/srv/Dark/S02/e1.mkv", "p2")

	return NewLibrary(map[string]*Catalog{"p1": p1, "p2": p2})
}

func titles(entries []CatalogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Meta().Title)
	}
	return out
}

func TestLibraryAggregatesMovieSources(t *testing.T) {
	t.Parallel()

	lib := libraryFixture()
	m, ok := lib.Movie("1")
	require.True(t, ok)
	assert.Equal(t, []Source{
		{Path: "/m/Alien.mkv", Filename: "Alien.mkv", ProfileID: "p1"},
		{Path: "/films/Alien.1979.mkv", Filename: "Alien.1979.mkv", ProfileID: "p2"},
	}, m.Sources)
}

func TestLibraryMergesSeasonsAcrossProfiles(t *testing.T) {
	t.Parallel()

	lib := libraryFixture()
	seasons, ok := lib.Seasons("10")
	require.True(t, ok)
	assert.Equal(t, []string{"Season 01", "Season 02"}, seasons)

	eps, ok := lib.Episodes("10", "Season 01")
	require.True(t, ok)
	assert.Equal(t, []Episode{
		{Path: "/tv/Dark/Season 01/e1.mkv", Filename: "e1.mkv", ProfileID: "p1"},
		{Path: "/tv/Dark/Season 01/e2.mkv", Filename: "e2.mkv", ProfileID: "p1"},
	}, eps)

	eps, ok = lib.Episodes("10", "Season 02")
	require.True(t, ok)
	assert.Equal(t, "p2", eps[0].ProfileID)

	_, ok = lib.Episodes("10", "Season 09")
	assert.False(t, ok)
	_, ok = lib.Seasons("nope")
	assert.False(t, ok)
}

func TestLibraryBrowseFilters(t *testing.T) {
	t.Parallel()

	lib := libraryFixture()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "all sorted by title", query: Query{Kind: KindMovie, Filter: FilterAll}, want: []string{"12 Monkeys", "Alien", "Brazil", "Ébano"}},
		{name: "popular by rating", query: Query{Kind: KindMovie, Filter: FilterPopular}, want: []string{"Alien", "Brazil", "12 Monkeys", "Ébano"}},
		{name: "alpha folds accents", query: Query{Kind: KindMovie, Filter: FilterAlpha, Value: "E"}, want: []string{"Ébano"}},
		{name: "alpha non-letter", query: Query{Kind: KindMovie, Filter: FilterAlpha, Value: "#"}, want: []string{"12 Monkeys"}},
		{name: "year", query: Query{Kind: KindMovie, Filter: FilterYear, Value: "1985"}, want: []string{"Brazil"}},
		{name: "bad year matches nothing", query: Query{Kind: KindMovie, Filter: FilterYear, Value: "soon"}, want: []string{}},
		{name: "genre", query: Query{Kind: KindMovie, Filter: FilterGenre, Value: "science fiction"}, want: []string{"12 Monkeys", "Alien"}},
		{name: "shows", query: Query{Kind: KindTVShow, Filter: FilterAll}, want: []string{"Dark"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			items, info := lib.Browse(tt.query)
			assert.Equal(t, tt.want, titles(items))
			assert.Equal(t, len(tt.want), info.Total)
		})
	}
}

func TestLibrarySearch(t *testing.T) {
	t.Parallel()

	lib := libraryFixture()
	assert.Equal(t, []string{"Dark"}, titles(lib.Search("DAR")))
	assert.Equal(t, []string{"Ébano"}, titles(lib.Search("eban")))
	assert.Empty(t, lib.Search("   "))
}

func TestLibraryYearsAndGenres(t *testing.T) {
	t.Parallel()

	lib := libraryFixture()
	assert.Equal(t, []int{2010, 1995, 1985, 1979}, lib.Years(KindMovie))
	assert.Equal(t, []string{"Comedy", "Drama", "Horror", "Science Fiction"}, lib.Genres(KindMovie))
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := make([]int, 120)
	for i := range items {
		items[i] = i
	}

	page, info := Paginate(items, 3, 0)
	assert.Len(t, page, 20)
	assert.Equal(t, PageInfo{Page: 3, PageSize: DefaultPageSize, Total: 120, TotalPages: 3}, info)

	page, info = Paginate(items, 0, 50)
	assert.Equal(t, 0, page[0])
	assert.True(t, info.HasNext)

	page, info = Paginate(items, 9, 50)
	assert.Empty(t, page)
	assert.False(t, info.HasNext)
}

func TestLetterOf(t *testing.T) {
	t.Parallel()

	for title, want := range map[string]string{
		"alien":      "A",
		"Ébano":      "E",
		"12 Monkeys": "#",
		"":           "#",
		"(500) Days": "#",
	} {
		t.Run(fmt.Sprintf("%q", title), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, LetterOf(title))
		})
	}
}
