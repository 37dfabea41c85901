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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "ZAPAROO_INDEXER_CFG"
)

var (
	ErrSchemaMismatch = errors.New("schema version mismatch")
	ErrMissingAPIKey  = errors.New("metadata provider api key is not set")
)

type Values struct {
	Scan         Scan `toml:"scan"`
	TMDB         TMDB `toml:"tmdb"`
	API          API  `toml:"api"`
	ConfigSchema int  `toml:"config_schema"`
	DebugLogging bool `toml:"debug_logging"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Scan: Scan{
		CrawlWorkers:  DefaultWorkerCount,
		EnrichWorkers: DefaultWorkerCount,
	},
	TMDB: TMDB{
		Language:          "en-US",
		TrailerSource:     TrailerSourceYouTube,
		RequestsPerSecond: 4,
	},
	API: API{
		Port:     DefaultAPIPort,
		PageSize: DefaultPageSize,
	},
}

type Instance struct {
	cfgPath  string
	dataDir  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from dataDir, writing the defaults to disk
// first if no file exists yet. The ZAPAROO_INDEXER_CFG environment variable
// overrides the config file location.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(dataDir string, defaults Values) (*Instance, error) {
	cfgPath := filepath.Join(dataDir, CfgFile)
	if env := os.Getenv(CfgEnv); env != "" {
		log.Debug().Str("path", env).Msg("config path set by environment")
		cfgPath = env
	}

	cfg := &Instance{
		cfgPath:  cfgPath,
		dataDir:  dataDir,
		vals:     defaults,
		defaults: defaults,
	}

	_, err := os.Stat(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", cfgPath).Msg("writing default config")
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load rereads the config file. Keys missing from the file keep their
// default values.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	vals, err := readValues(c.cfgPath, c.defaults)
	if err != nil {
		return err
	}
	c.vals = vals
	applyLogLevel(c.vals.DebugLogging)

	return nil
}

//nolint:gocritic // defaults copied so the file is unmarshalled over them
func readValues(path string, defaults Values) (Values, error) {
	if path == "" {
		return Values{}, errors.New("config path not set")
	}

	//nolint:gosec // path comes from the data dir or the env override
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("failed to read config file: %w", err)
	}

	vals := defaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return Values{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if vals.ConfigSchema != SchemaVersion {
		log.Error().
			Int("got", vals.ConfigSchema).
			Int("want", SchemaVersion).
			Msg("config schema version mismatch")
		return Values{}, ErrSchemaMismatch
	}
	return vals, nil
}

// Save writes the current values. The file is replaced in one rename so a
// crash never leaves a truncated config behind.
func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion
	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := c.cfgPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, c.cfgPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// DataDir is the directory holding profiles, catalogs and logs.
func (c *Instance) DataDir() string {
	return c.dataDir
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	applyLogLevel(enabled)
}

func applyLogLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
