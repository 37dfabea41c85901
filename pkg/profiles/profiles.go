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

// Package profiles stores the remote servers the indexer scans. Profiles are
// kept as a JSON array in the data directory and each one owns a catalog
// file that is deleted along with it.
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidProfile = errors.New("invalid profile")
)

type Profile struct {
	ID        string      `json:"id"`
	Name      string      `json:"name" validate:"required,max=128"`
	Kind      remote.Kind `json:"type" validate:"required,oneof=ftp http"`
	Host      string      `json:"host" validate:"required"`
	Path      string      `json:"path" validate:"required,startswith=/"`
	User      string      `json:"user" validate:"required_unless=Anonymous true"`
	Pass      string      `json:"pass"`
	Anonymous bool        `json:"anonymous"`
}

// Endpoint is the connection description handed to the remote package.
func (p *Profile) Endpoint() remote.Endpoint {
	return remote.Endpoint{
		Kind:      p.Kind,
		Host:      p.Host,
		Path:      p.Path,
		User:      p.User,
		Pass:      p.Pass,
		Anonymous: p.Anonymous,
	}
}

// Summary is a profile together with the size of its catalog.
type Summary struct {
	Profile
	Movies int `json:"movies"`
	Shows  int `json:"shows"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the profile's fields. The returned error wraps
// ErrInvalidProfile and names every failing field.
func Validate(p *Profile) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, ", "))
}

// normalize fills in defaults users commonly leave out.
func normalize(p *Profile) {
	p.Name = strings.TrimSpace(p.Name)
	p.Host = strings.TrimSpace(p.Host)
	p.Kind = remote.Kind(strings.ToLower(string(p.Kind)))
	if p.Path == "" {
		p.Path = "/"
	}
	if p.Anonymous {
		p.User = ""
		p.Pass = ""
	}
}

// Store reads and writes the profile list. All methods are safe for
// concurrent use within one process.
type Store struct {
	fs       afero.Fs
	catalogs *catalog.Store
	path     string
	mu       syncutil.Mutex
}

func NewStore(fs afero.Fs, dataDir string, catalogs *catalog.Store) *Store {
	return &Store{
		fs:       fs,
		catalogs: catalogs,
		path:     helpers.ProfilesPath(dataDir),
	}
}

func (s *Store) read() ([]Profile, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Profile{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var ps []Profile
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if ps == nil {
		ps = []Profile{}
	}
	return ps, nil
}

func (s *Store) write(ps []Profile) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}
	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace profiles: %w", err)
	}
	return nil
}

func (s *Store) List() ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Summaries lists every profile with its catalog's movie and show counts.
func (s *Store) Summaries() ([]Summary, error) {
	ps, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(ps))
	for i := range ps {
		movies, shows := s.catalogs.Counts(ps[i].ID)
		out = append(out, Summary{Profile: ps[i], Movies: movies, Shows: shows})
	}
	return out, nil
}

func (s *Store) Get(id string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.read()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(ps, func(p Profile) bool { return p.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &ps[i], nil
}

// Add validates p, assigns it a new ID and appends it to the store.
func (s *Store) Add(p Profile) (*Profile, error) {
	normalize(&p)
	if err := Validate(&p); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.read()
	if err != nil {
		return nil, err
	}
	ps = append(ps, p)
	if err := s.write(ps); err != nil {
		return nil, err
	}

	log.Info().Str("id", p.ID).Str("name", p.Name).Msg("profile added")
	return &p, nil
}

// Update replaces the stored profile with the same ID. The profile's
// catalog is kept.
func (s *Store) Update(p Profile) error {
	normalize(&p)
	if err := Validate(&p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.read()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(ps, func(e Profile) bool { return e.ID == p.ID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	ps[i] = p
	if err := s.write(ps); err != nil {
		return err
	}

	log.Info().Str("id", p.ID).Msg("profile updated")
	return nil
}

// Delete removes the profile and its catalog file.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.read()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(ps, func(p Profile) bool { return p.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ps = slices.Delete(ps, i, i+1)
	if err := s.write(ps); err != nil {
		return err
	}
	if err := s.catalogs.Delete(id); err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("profile deleted")
	return nil
}
