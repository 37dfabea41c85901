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

package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName            = "zaparoo-indexer"
	LogFile            = "indexer.log"
	CfgFile            = "indexer.toml"
	ProfilesFile       = "profiles.json"
	ApiRequestTimeout  = 30 * time.Second
	ListingTimeout     = 30 * time.Second
	MetadataTimeout    = 20 * time.Second
	DefaultPageSize    = 50
	DefaultAPIPort     = 7598
	DefaultWorkerCount = 4
)
