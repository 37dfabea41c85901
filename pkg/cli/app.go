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
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/metadata"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const notificationBuffer = 100

// App holds the stores shared by the CLI commands.
type App struct {
	cfg       *config.Instance
	profiles  *profiles.Store
	catalogs  *catalog.Store
	providers api.ProviderFactory
	out       io.Writer
}

func NewApp(cfg *config.Instance, out io.Writer) *App {
	return newApp(cfg, afero.NewOsFs(), func() (metadata.Provider, error) {
		return metadata.NewTMDBFromConfig(cfg)
	}, out)
}

func newApp(cfg *config.Instance, fs afero.Fs, providers api.ProviderFactory, out io.Writer) *App {
	catalogs := catalog.NewStore(fs, cfg.DataDir())
	return &App{
		cfg:       cfg,
		profiles:  profiles.NewStore(fs, cfg.DataDir(), catalogs),
		catalogs:  catalogs,
		providers: providers,
		out:       out,
	}
}

func (a *App) ListProfiles() error {
	sums, err := a.profiles.Summaries()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(sums) == 0 {
		_, _ = fmt.Fprintln(a.out, "No profiles saved.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE\tHOST\tPATH\tMOVIES\tSHOWS")
	for i := range sums {
		s := &sums[i]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			s.ID, s.Name, s.Kind, s.Host, s.Path, s.Movies, s.Shows)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

func (a *App) AddProfile(p profiles.Profile) error {
	added, err := a.profiles.Add(p)
	if err != nil {
		return fmt.Errorf("failed to add profile: %w", err)
	}
	_, _ = fmt.Fprintf(a.out, "Added profile %s (%s)\n", added.Name, added.ID)
	return nil
}

func (a *App) DeleteProfile(id string) error {
	if err := a.profiles.Delete(id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	_, _ = fmt.Fprintf(a.out, "Deleted profile %s\n", id)
	return nil
}

// consoleSink prints scan events as they arrive. Events reach it from a
// single goroutine.
func consoleSink(w io.Writer) scan.Sink {
	return func(ev scan.Event) {
		switch ev.Status {
		case scan.StatusStarted:
			_, _ = fmt.Fprintf(w, "Scan %s started\n", ev.SessionID)
		case scan.StatusProgress:
			_, _ = fmt.Fprintf(w, "[%3d%%] %s %s\n", ev.Percent, ev.Heading, ev.Detail)
		case scan.StatusFinished:
			_, _ = fmt.Fprintf(w, "[100%%] %s\n", ev.Heading)
		case scan.StatusCancelled:
			_, _ = fmt.Fprintln(w, "Scan cancelled")
		case scan.StatusFailed:
			_, _ = fmt.Fprintf(w, "Scan failed: %s\n", ev.Error)
		}
	}
}

// Scan runs a scan of one profile in the foreground. Cancelling ctx
// cancels the scan.
func (a *App) Scan(ctx context.Context, id string, mode scan.Mode) error {
	p, err := a.profiles.Get(id)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	provider, err := a.providers()
	if err != nil {
		return fmt.Errorf("failed to create metadata provider: %w", err)
	}

	manager := scan.NewManager(a.catalogs, scan.WithSink(consoleSink(a.out)))
	res, err := manager.Run(ctx, scan.Config{
		Profile:       *p,
		Provider:      provider,
		Mode:          mode,
		CrawlWorkers:  a.cfg.CrawlWorkers(),
		EnrichWorkers: a.cfg.EnrichWorkers(),
		Timeout:       config.ListingTimeout,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	_, _ = fmt.Fprintf(a.out, "Found %d files, %d new, %d added, %d unmatched\n",
		res.Found, res.NetNew, res.Added, res.Missed)
	return nil
}

// Export writes the catalog of one profile as CSV.
func (a *App) Export(id string, w io.Writer) error {
	if _, err := a.profiles.Get(id); err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	return catalog.WriteCSV(w, a.catalogs.Load(id)) //nolint:wrapcheck // already wrapped
}

// ExportFile exports to dest, or to the app's output when dest is empty.
func (a *App) ExportFile(id, dest string) error {
	if dest == "" {
		return a.Export(id, a.out)
	}
	//nolint:gosec // user chooses the destination
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := a.Export(id, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	_, _ = fmt.Fprintf(a.out, "Exported catalog to %s\n", dest)
	return nil
}

// Serve runs the API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ns := make(chan models.Notification, notificationBuffer)
	scans := scan.NewManager(a.catalogs, scan.WithSink(notifications.ScanSink(ns)))
	srv := api.NewServer(a.cfg, a.profiles, a.catalogs, scans, a.providers, ns)

	log.Info().Int("port", a.cfg.APIPort()).Msg("starting api server")
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}
