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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrUsage = errors.New("usage error")

const usage = `Usage: zaparoo-indexer [flags] <command> [args]

Commands:
  profiles               list saved profiles and their catalog sizes
  add-profile            save a new profile from -name, -type, -host, -path,
                         -user, -pass and -anonymous
  delete-profile <id>    delete a profile and its catalog
  scan <id>              scan a profile's remote into its catalog
  export <id>            write a profile's catalog as CSV
  serve                  run the catalog API
  version                print version and exit

Flags:
`

type Flags struct {
	fs        *flag.FlagSet
	DataDir   *string
	Mode      *string
	Output    *string
	Name      *string
	Kind      *string
	Host      *string
	Path      *string
	User      *string
	Pass      *string
	Anonymous *bool
	Verbose   *bool
}

// SetupFlags defines every CLI flag on a new flag set.
func SetupFlags(stderr io.Writer) *Flags {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	return &Flags{
		fs: fs,
		DataDir: fs.String(
			"data",
			helpers.DefaultDataDir(),
			"directory holding config, profiles, catalogs and logs",
		),
		Mode: fs.String(
			"mode",
			string(scan.ModeIncremental),
			"scan mode: full or incremental",
		),
		Output: fs.String(
			"out",
			"",
			"export destination file (default stdout)",
		),
		Name:      fs.String("name", "", "profile name"),
		Kind:      fs.String("type", string(remote.KindFTP), "profile type: ftp or http"),
		Host:      fs.String("host", "", "profile host, with an optional scheme and port"),
		Path:      fs.String("path", "/", "profile start path"),
		User:      fs.String("user", "", "profile username"),
		Pass:      fs.String("pass", "", "profile password"),
		Anonymous: fs.Bool("anonymous", false, "connect without credentials"),
		Verbose: fs.Bool(
			"verbose",
			false,
			"also write logs to stderr",
		),
	}
}

// Parse parses args and returns the command and its arguments.
func (f *Flags) Parse(args []string) (string, []string, error) {
	if err := f.fs.Parse(args); err != nil {
		return "", nil, errors.Join(ErrUsage, err)
	}
	rest := f.fs.Args()
	if len(rest) == 0 {
		f.fs.Usage()
		return "", nil, fmt.Errorf("%w: no command given", ErrUsage)
	}
	return rest[0], rest[1:], nil
}

// Profile builds a profile from the profile flags.
func (f *Flags) Profile() profiles.Profile {
	return profiles.Profile{
		Name:      *f.Name,
		Kind:      remote.Kind(*f.Kind),
		Host:      *f.Host,
		Path:      *f.Path,
		User:      *f.User,
		Pass:      *f.Pass,
		Anonymous: *f.Anonymous,
	}
}

// Setup initializes logging and the config file in dataDir.
//
//nolint:gocritic // config struct copied for immutability
func Setup(dataDir string, defaultConfig config.Values, writers []io.Writer) (*config.Instance, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}

	if err := helpers.InitLogging(helpers.LogDir(dataDir), writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(dataDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg, nil
}

func needID(cmd string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: %s requires a profile id", ErrUsage, cmd)
	}
	return args[0], nil
}

// Run parses args and runs one command. Cancelling ctx stops a running scan
// or server.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := SetupFlags(stderr)
	cmd, rest, err := flags.Parse(args)
	if err != nil {
		return err
	}

	if cmd == "version" {
		_, _ = fmt.Fprintf(stdout, "Zaparoo Indexer v%s\n", config.AppVersion)
		return nil
	}

	var logWriters []io.Writer
	if *flags.Verbose || cmd == "serve" {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: stderr}}
	}
	cfg, err := Setup(*flags.DataDir, config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}
	app := NewApp(cfg, stdout)

	log.Debug().Str("command", cmd).Str("data", cfg.DataDir()).Msg("running command")

	switch cmd {
	case "profiles":
		return app.ListProfiles()
	case "add-profile":
		return app.AddProfile(flags.Profile())
	case "delete-profile":
		id, err := needID(cmd, rest)
		if err != nil {
			return err
		}
		return app.DeleteProfile(id)
	case "scan":
		id, err := needID(cmd, rest)
		if err != nil {
			return err
		}
		mode, err := scan.ParseMode(*flags.Mode)
		if err != nil {
			return fmt.Errorf("%w: %q", err, *flags.Mode)
		}
		return app.Scan(ctx, id, mode)
	case "export":
		id, err := needID(cmd, rest)
		if err != nil {
			return err
		}
		return app.ExportFile(id, *flags.Output)
	case "serve":
		return app.Serve(ctx)
	default:
		flags.fs.Usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}
