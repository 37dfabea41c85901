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

package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/adrg/xdg"
)

const (
	LogsDir     = "logs"
	CatalogsDir = "catalogs"
)

// DefaultDataDir is the per-user data directory, following the XDG base
// directory spec on Linux and the platform equivalent elsewhere.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

func LogDir(dataDir string) string {
	return filepath.Join(dataDir, LogsDir)
}

func ProfilesPath(dataDir string) string {
	return filepath.Join(dataDir, config.ProfilesFile)
}

// CatalogPath is the catalog file owned by a single profile.
func CatalogPath(dataDir, profileID string) string {
	return filepath.Join(dataDir, CatalogsDir, fmt.Sprintf("cache_%s.json", profileID))
}
