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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Store reads and writes catalog files, one per profile, under the data
// directory.
type Store struct {
	fs      afero.Fs
	dataDir string
}

func NewStore(fs afero.Fs, dataDir string) *Store {
	return &Store{fs: fs, dataDir: dataDir}
}

func (s *Store) Path(profileID string) string {
	return helpers.CatalogPath(s.dataDir, profileID)
}

func (s *Store) Exists(profileID string) bool {
	ok, err := afero.Exists(s.fs, s.Path(profileID))
	return err == nil && ok
}

// Load returns the profile's catalog. A missing, unreadable or corrupt file
// yields an empty catalog rather than an error, so a broken cache only
// costs a full re-index.
func (s *Store) Load(profileID string) *Catalog {
	p := s.Path(profileID)
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", p).Msg("failed to read catalog, starting empty")
		}
		return New()
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		log.Warn().Err(err).Str("path", p).Msg("catalog file is corrupt, starting empty")
		return New()
	}
	c.normalize()
	return c
}

// Save writes the catalog via a temporary file and rename so readers never
// see a partial file.
func (s *Store) Save(profileID string, c *Catalog) error {
	p := s.Path(profileID)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	log.Debug().
		Str("profile", profileID).
		Int("movies", len(c.Movies)).
		Int("shows", len(c.TvShows)).
		Msg("catalog saved")
	return nil
}

// Delete removes the profile's catalog file. A missing file is not an error.
func (s *Store) Delete(profileID string) error {
	err := s.fs.Remove(s.Path(profileID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete catalog: %w", err)
	}
	return nil
}

// Counts returns the number of movies and shows in the profile's catalog.
func (s *Store) Counts(profileID string) (movies, shows int) {
	c := s.Load(profileID)
	return len(c.Movies), len(c.TvShows)
}

// LoadAll loads the catalogs of the given profiles keyed by profile ID.
func (s *Store) LoadAll(profileIDs []string) map[string]*Catalog {
	out := make(map[string]*Catalog, len(profileIDs))
	for _, id := range profileIDs {
		out[id] = s.Load(id)
	}
	return out
}
