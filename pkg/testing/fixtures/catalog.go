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

package fixtures

import "github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"

// Common catalog fixtures for use in tests

const (
	InceptionID     = "27205"
	MatrixID        = "603"
	GameOfThronesID = "1399"
)

var (
	Inception = catalog.Info{
		Title:  "Inception",
		Year:   2010,
		Rating: 8.4,
		Genres: []string{"Action", "Science Fiction"},
	}
	Matrix = catalog.Info{
		Title:  "The Matrix",
		Year:   1999,
		Rating: 8.2,
		Genres: []string{"Action"},
	}
	GameOfThrones = catalog.Info{
		Title:  "Game of Thrones",
		Year:   2011,
		Rating: 8.5,
		Genres: []string{"Drama"},
	}
)

// SampleCatalog returns two movies and a show with two episodes, all
// served by profileID from under /media.
func SampleCatalog(profileID string) *catalog.Catalog {
	c := catalog.New()
	c.MergeMovie(InceptionID, Inception, catalog.Art{Poster: "https://image.tmdb.org/t/p/w500/inception.jpg"},
		catalog.NewSource("/media/Inception.2010.mkv", profileID))
	c.MergeMovie(MatrixID, Matrix, catalog.Art{},
		catalog.NewSource("/media/The.Matrix.1999.mkv", profileID))
	c.MergeEpisode(GameOfThronesID, GameOfThrones, catalog.Art{},
		"Season 01", "/media/GoT/Season%2001/S01E01.mkv", profileID)
	c.MergeEpisode(GameOfThronesID, GameOfThrones, catalog.Art{},
		"Season 01", "/media/GoT/Season%2001/S01E02.mkv", profileID)
	return c
}
