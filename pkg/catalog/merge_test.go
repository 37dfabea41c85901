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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMergeMovieAppendsNewSourcesOnly(t *testing.T) {
	t.Parallel()

	c := New()
	info := Info{Title: "Inception", Year: 2010}

	assert.True(t, c.MergeMovie("27205", info, Art{}, NewSource("/movies/Inception (2010).mkv", "p1")))
	assert.False(t, c.MergeMovie("27205", info, Art{}, NewSource("/movies/Inception (2010).mkv", "p1")))
	assert.True(t, c.MergeMovie("27205", info, Art{}, NewSource("/movies/Inception.2.mkv", "p1")))

	m := c.Movies["27205"]
	require.NotNil(t, m)
	assert.Equal(t, []Source{
		{Path: "/movies/Inception (2010).mkv", Filename: "Inception (2010).mkv", ProfileID: "p1"},
		{Path: "/movies/Inception.2.mkv", Filename: "Inception.2.mkv", ProfileID: "p1"},
	}, m.Sources)
}

func TestMergeMovieReplacesInfoAndArt(t *testing.T) {
	t.Parallel()

	c := New()
	c.MergeMovie("1", Info{Title: "Old", Rating: 5}, Art{Poster: "a"}, NewSource("/a.mkv", "p"))
	c.MergeMovie("1", Info{Title: "New", Rating: 8}, Art{Poster: "b"}, NewSource("/a.mkv", "p"))

	assert.Equal(t, "New", c.Movies["1"].Info.Title)
	assert.InDelta(t, 8.0, c.Movies["1"].Info.Rating, 0.001)
	assert.Equal(t, "b", c.Movies["1"].Art.Poster)
	assert.Len(t, c.Movies["1"].Sources, 1)
}

func TestMergeEpisode(t *testing.T) {
	t.Parallel()

	c := New()
	info := Info{Title: "Show"}
	ep := "/movies/Show/Season 01/S01E01.mkv"

	assert.True(t, c.MergeEpisode("1399", info, Art{}, "Season 01", ep, "p1"))
	assert.False(t, c.MergeEpisode("1399", info, Art{}, "Season 01", ep, "p1"))
	assert.True(t, c.MergeEpisode("1399", info, Art{}, "Season 02", "/movies/Show/Season 02/S02E01.mkv", "p1"))

	show := c.TvShows["1399"]
	require.NotNil(t, show)
	assert.Equal(t, "p1", show.ProfileID)
	assert.Equal(t, []string{ep}, show.Seasons["Season 01"])
	assert.Equal(t, []string{"Season 01", "Season 02"}, show.SeasonNames())
	assert.Equal(t, 2, show.EpisodeCount())
}

func TestExistingPathsAndDiff(t *testing.T) {
	t.Parallel()

	c := New()
	c.MergeMovie("1", Info{}, Art{}, NewSource("/m/a.mkv", "p"))
	c.MergeEpisode("2", Info{}, Art{}, "Season 01", "/tv/s/e1.mkv", "p")

	existing := c.ExistingPaths()
	assert.Len(t, existing, 2)

	got := Diff([]string{"/m/a.mkv", "/m/b.mkv", "/tv/s/e1.mkv", "/tv/s/e2.mkv", "/m/b.mkv"}, existing)
	assert.Equal(t, []string{"/m/b.mkv", "/tv/s/e2.mkv"}, got)
}

func TestDiffSubsetLaw(t *testing.T) {
	t.Parallel()

	pathGen := rapid.SampledFrom([]string{"/a.mkv", "/b.mkv", "/c.mkv", "/d/e.mp4", "/d/f.avi", "/g.ts"})

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOf(pathGen).Draw(t, "raw")
		existingList := rapid.SliceOf(pathGen).Draw(t, "existing")
		existing := make(map[string]struct{}, len(existingList))
		for _, p := range existingList {
			existing[p] = struct{}{}
		}

		got := Diff(raw, existing)
		for _, p := range got {
			if !slices.Contains(raw, p) {
				t.Fatalf("%s not in raw paths", p)
			}
			if _, ok := existing[p]; ok {
				t.Fatalf("%s already existed", p)
			}
		}
		for _, p := range raw {
			if _, ok := existing[p]; !ok && !slices.Contains(got, p) {
				t.Fatalf("new path %s missing from diff", p)
			}
		}
	})
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		c := New()
		n := rapid.IntRange(1, 30).Draw(t, "n")
		for i := range n {
			id := fmt.Sprintf("%d", rapid.IntRange(1, 4).Draw(t, fmt.Sprintf("id%d", i)))
			p := fmt.Sprintf("/media/%d.mkv", rapid.IntRange(1, 8).Draw(t, fmt.Sprintf("path%d", i)))
			if rapid.Bool().Draw(t, fmt.Sprintf("movie%d", i)) {
				c.MergeMovie(id, Info{}, Art{}, NewSource(p, "p"))
			} else {
				season := fmt.Sprintf("Season %02d", rapid.IntRange(1, 2).Draw(t, fmt.Sprintf("season%d", i)))
				c.MergeEpisode(id, Info{}, Art{}, season, p, "p")
			}
		}

		for id, m := range c.Movies {
			seen := map[string]bool{}
			for _, s := range m.Sources {
				if seen[s.Path] {
					t.Fatalf("movie %s has duplicate source %s", id, s.Path)
				}
				seen[s.Path] = true
			}
		}
		for id, show := range c.TvShows {
			for season, eps := range show.Seasons {
				seen := map[string]bool{}
				for _, p := range eps {
					if seen[p] {
						t.Fatalf("show %s %s has duplicate episode %s", id, season, p)
					}
					seen[p] = true
				}
			}
		}
	})
}
