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

// Package metadata looks up descriptive information and artwork for movies
// and TV shows from an external provider.
package metadata

import (
	"context"
	"errors"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
)

// ErrNoMatch is returned when the provider has no result for a title.
var ErrNoMatch = errors.New("no metadata match")

// Result is one enriched title.
type Result struct {
	ProviderID string
	Kind       catalog.Kind
	Art        catalog.Art
	Info       catalog.Info
}

// Provider resolves a title to metadata. Year is zero when unknown.
// Implementations return ErrNoMatch when nothing matches.
type Provider interface {
	Lookup(ctx context.Context, title string, year int, kind catalog.Kind) (*Result, error)
}

// IsMiss reports whether err means the title simply was not found, as
// opposed to the provider failing.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNoMatch)
}
