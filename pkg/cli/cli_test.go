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

package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/metadata"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	testhelpers "github.com/ZaparooProject/zaparoo-indexer/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, config.AppVersion)
}

func TestRunUsageErrors(t *testing.T) {
	t.Setenv(config.CfgEnv, "")
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: []string{"-data", dir}},
		{name: "unknown command", args: []string{"-data", dir, "frobnicate"}},
		{name: "delete without id", args: []string{"-data", dir, "delete-profile"}},
		{name: "scan without id", args: []string{"-data", dir, "scan"}},
		{name: "export with extra args", args: []string{"-data", dir, "export", "a", "b"}},
		{name: "bad flag", args: []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.ErrorIs(t, err, ErrUsage)
		})
	}
}

func TestRunRejectsUnknownScanMode(t *testing.T) {
	t.Setenv(config.CfgEnv, "")
	_, err := runCLI(t, "-data", t.TempDir(), "-mode", "quick", "scan", "abc")
	require.ErrorIs(t, err, scan.ErrUnknownMode)
}

func TestRunProfileCommands(t *testing.T) {
	t.Setenv(config.CfgEnv, "")
	dir := t.TempDir()

	out, err := runCLI(t, "-data", dir, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "No profiles saved.")

	out, err = runCLI(t, "-data", dir,
		"-name", "Seedbox", "-type", "ftp", "-host", "ftp.example.com",
		"-path", "/downloads", "-user", "bob", "-pass", "secret",
		"add-profile")
	require.NoError(t, err)
	assert.Contains(t, out, "Added profile Seedbox")

	assert.FileExists(t, filepath.Join(dir, config.ProfilesFile))
	assert.FileExists(t, filepath.Join(dir, config.CfgFile))

	out, err = runCLI(t, "-data", dir, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "Seedbox")
	assert.Contains(t, out, "ftp.example.com")
	assert.Contains(t, out, "/downloads")

	_, err = runCLI(t, "-data", dir, "-name", "Nobody", "-host", "h", "add-profile")
	require.ErrorIs(t, err, profiles.ErrInvalidProfile)

	_, err = runCLI(t, "-data", dir, "delete-profile", "missing")
	require.ErrorIs(t, err, profiles.ErrNotFound)
}

type testApp struct {
	app      *App
	provider *mocks.MockProvider
	out      *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv(config.CfgEnv, "")
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	provider := mocks.NewMockProvider()
	out := &bytes.Buffer{}
	app := newApp(cfg, afero.NewMemMapFs(), func() (metadata.Provider, error) {
		return provider, nil
	}, out)
	return &testApp{app: app, provider: provider, out: out}
}

func TestScanAndExport(t *testing.T) {
	ta := newTestApp(t)
	media := testhelpers.NewIndexServer(t, map[string][]string{
		"/share/": {"Inception.2010.mkv", "Unknown.Film.1999.mkv"},
	})

	require.NoError(t, ta.app.AddProfile(profiles.Profile{
		Name: "Share", Kind: "http", Host: media.URL, Path: "/share/", Anonymous: true,
	}))
	ps, err := ta.app.profiles.List()
	require.NoError(t, err)
	require.Len(t, ps, 1)
	id := ps[0].ID

	ta.provider.ExpectMovie("Inception", 2010, "27205")
	ta.provider.ExpectMiss("Unknown Film", 1999, catalog.KindMovie)

	ta.out.Reset()
	require.NoError(t, ta.app.Scan(context.Background(), id, scan.ModeFull))
	out := ta.out.String()
	assert.Contains(t, out, "started")
	assert.Contains(t, out, "[100%] Added 1 files")
	assert.Contains(t, out, "Found 2 files, 2 new, 1 added, 1 unmatched")
	ta.provider.AssertExpectations(t)

	ta.out.Reset()
	require.NoError(t, ta.app.Export(id, ta.out))
	csv := ta.out.String()
	assert.Contains(t, csv, "kind,provider_id,title")
	assert.Contains(t, csv, "movie,27205,Inception")
	assert.Contains(t, csv, "/share/Inception.2010.mkv")
	assert.NotContains(t, csv, "Unknown")

	ta.out.Reset()
	require.NoError(t, ta.app.ListProfiles())
	assert.Contains(t, ta.out.String(), "Share")
}

func TestScanUnknownProfile(t *testing.T) {
	ta := newTestApp(t)
	err := ta.app.Scan(context.Background(), "missing", scan.ModeIncremental)
	require.ErrorIs(t, err, profiles.ErrNotFound)
}

func TestExportUnknownProfile(t *testing.T) {
	ta := newTestApp(t)
	err := ta.app.Export("missing", ta.out)
	require.ErrorIs(t, err, profiles.ErrNotFound)
}

func TestConsoleSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := consoleSink(&buf)
	sink(scan.Event{Status: scan.StatusProgress, Percent: 7, Heading: "Found 3 video files...", Detail: "Scanning: /a"})
	sink(scan.Event{Status: scan.StatusFailed, Error: "boom"})
	sink(scan.Event{Status: scan.StatusCancelled})

	assert.Equal(t,
		"[  7%] Found 3 video files... Scanning: /a\nScan failed: boom\nScan cancelled\n",
		buf.String())
}
