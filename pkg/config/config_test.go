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

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CfgEnv, "")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, CfgFile))
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkerCount, cfg.CrawlWorkers())
	assert.Equal(t, DefaultWorkerCount, cfg.EnrichWorkers())
	assert.Equal(t, TrailerSourceYouTube, cfg.TrailerSource())
	assert.Equal(t, "en-US", cfg.TMDBLanguage())
	assert.Equal(t, DefaultAPIPort, cfg.APIPort())
	assert.Equal(t, DefaultPageSize, cfg.PageSize())
	assert.Empty(t, cfg.TMDBAPIKey())
	assert.Equal(t, dir, cfg.DataDir())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CfgEnv, "")

	data := []byte(`config_schema = 1

[scan]
crawl_workers = 8

[tmdb]
api_key = "abc123"
trailer_source = "tmdb"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), data, 0o600))

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.CrawlWorkers())
	assert.Equal(t, DefaultWorkerCount, cfg.EnrichWorkers())
	assert.Equal(t, "abc123", cfg.TMDBAPIKey())
	assert.Equal(t, TrailerSourceTMDB, cfg.TrailerSource())
	assert.InDelta(t, 4.0, cfg.TMDBRequestsPerSecond(), 0.001)
}

func TestLoadSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CfgEnv, "")

	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte("config_schema = 99\n"), 0o600))

	_, err := NewConfig(dir, BaseDefaults)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestWorkerCountsFallBackWhenInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CfgEnv, "")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetCrawlWorkers(0)
	cfg.SetEnrichWorkers(-3)
	assert.Equal(t, DefaultWorkerCount, cfg.CrawlWorkers())
	assert.Equal(t, DefaultWorkerCount, cfg.EnrichWorkers())

	cfg.SetEnrichWorkers(2)
	assert.Equal(t, 2, cfg.EnrichWorkers())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CfgEnv, "")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetTMDBAPIKey("key")
	cfg.SetCrawlWorkers(6)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, "key", reloaded.TMDBAPIKey())
	assert.Equal(t, 6, reloaded.CrawlWorkers())
}

func TestEnvOverridesConfigPath(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom", "other.toml")
	t.Setenv(CfgEnv, custom)

	_, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	_, err = os.Stat(custom)
	require.NoError(t, err)
}
