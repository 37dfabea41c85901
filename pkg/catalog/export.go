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
	"fmt"
	"io"
	"path"
	"slices"

	"github.com/gocarina/gocsv"
)

// ExportRow is one media file in a CSV export.
type ExportRow struct {
	Kind       Kind   `csv:"kind"`
	ProviderID string `csv:"provider_id"`
	Title      string `csv:"title"`
	Season     string `csv:"season"`
	Path       string `csv:"path"`
	Filename   string `csv:"filename"`
	ProfileID  string `csv:"profile_id"`
	Year       int    `csv:"year"`
}

// ExportRows lists one row per movie source and per episode, sorted by
// kind, title and path.
func ExportRows(c *Catalog) []ExportRow {
	var rows []ExportRow
	for _, m := range c.Movies {
		for _, src := range m.Sources {
			rows = append(rows, ExportRow{
				Kind:       KindMovie,
				ProviderID: m.ProviderID,
				Title:      m.Info.Title,
				Year:       m.Info.Year,
				Path:       src.Path,
				Filename:   src.Filename,
				ProfileID:  src.ProfileID,
			})
		}
	}
	for _, s := range c.TvShows {
		for season, eps := range s.Seasons {
			for _, p := range eps {
				rows = append(rows, ExportRow{
					Kind:       KindTVShow,
					ProviderID: s.ProviderID,
					Title:      s.Info.Title,
					Year:       s.Info.Year,
					Season:     season,
					Path:       p,
					Filename:   path.Base(p),
					ProfileID:  s.ProfileID,
				})
			}
		}
	}
	slices.SortFunc(rows, func(a, b ExportRow) int {
		return cmp.Or(
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Title, b.Title),
			cmp.Compare(a.Path, b.Path),
		)
	})
	return rows
}

// WriteCSV writes ExportRows of c with a header line.
func WriteCSV(w io.Writer, c *Catalog) error {
	rows := ExportRows(c)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
