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

// Package api serves the catalog and scan controls over HTTP, and pushes
// scan events to websocket clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/middleware"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/metadata"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// ProviderFactory builds the metadata provider for a new scan, so config
// changes apply without a restart.
type ProviderFactory func() (metadata.Provider, error)

type Server struct {
	cfg           *config.Instance
	profiles      *profiles.Store
	catalogs      *catalog.Store
	scans         *scan.Manager
	providers     ProviderFactory
	clock         clockwork.Clock
	session       *melody.Melody
	notifications <-chan models.Notification
}

// NewServer wires the API to its stores. Scan events must be delivered to
// notifications by the scan manager's sink.
func NewServer(
	cfg *config.Instance,
	profileStore *profiles.Store,
	catalogs *catalog.Store,
	scans *scan.Manager,
	providers ProviderFactory,
	notifications <-chan models.Notification,
) *Server {
	session := melody.New()
	session.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	session.HandleMessage(func(s *melody.Session, msg []byte) {
		// ping command for heartbeat operation
		if string(msg) == "ping" {
			if err := s.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
		}
	})

	return &Server{
		cfg:           cfg,
		profiles:      profileStore,
		catalogs:      catalogs,
		scans:         scans,
		providers:     providers,
		clock:         clockwork.NewRealClock(),
		session:       session,
		notifications: notifications,
	}
}

// Router builds the HTTP handler. Background helpers stop when ctx is
// cancelled.
func (s *Server) Router(ctx context.Context) http.Handler {
	limiter := middleware.NewIPRateLimiter(s.clock, s.cfg.RequestsPerMinute(), 0)
	limiter.StartCleanup(ctx)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(s.cfg.AllowedIPs())))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	r.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.HTTPRateLimitMiddleware(limiter))
		r.Use(chimiddleware.Timeout(config.ApiRequestTimeout))

		r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": config.AppVersion})
		})

		r.Get("/api/movies", s.handleBrowse(catalog.KindMovie))
		r.Get("/api/movies/years", s.handleYears(catalog.KindMovie))
		r.Get("/api/movies/genres", s.handleGenres(catalog.KindMovie))
		r.Get("/api/movies/{id}", s.handleMovie)

		r.Get("/api/shows", s.handleBrowse(catalog.KindTVShow))
		r.Get("/api/shows/years", s.handleYears(catalog.KindTVShow))
		r.Get("/api/shows/genres", s.handleGenres(catalog.KindTVShow))
		r.Get("/api/shows/{id}", s.handleShow)
		r.Get("/api/shows/{id}/seasons", s.handleSeasons)
		r.Get("/api/shows/{id}/seasons/{season}/episodes", s.handleEpisodes)

		r.Get("/api/letters", handleLetters)
		r.Get("/api/search", s.handleSearch)
		r.Get("/api/play", s.handlePlay)

		r.Get("/api/profiles", s.handleListProfiles)
		r.Post("/api/profiles", s.handleAddProfile)
		r.Put("/api/profiles/{id}", s.handleUpdateProfile)
		r.Delete("/api/profiles/{id}", s.handleDeleteProfile)

		r.Get("/api/profiles/{id}/scan", s.handleScanStatus)
		r.Post("/api/profiles/{id}/scan", s.handleStartScan)
		r.Delete("/api/profiles/{id}/scan", s.handleCancelScan)
	})

	return r
}

// broadcastNotifications forwards notifications to every websocket client
// until ctx is cancelled.
func (s *Server) broadcastNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif := <-s.notifications:
			data, err := json.Marshal(notif)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification")
				continue
			}
			if err := s.session.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// Serve starts broadcasting and serves on l until ctx is cancelled. Running
// scans are cancelled on shutdown.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	go s.broadcastNotifications(ctx)

	srv := &http.Server{
		Handler:           s.Router(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(l)
	}()

	log.Info().Str("addr", l.Addr().String()).Msg("api server listening")

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err //nolint:wrapcheck // surfaced to the CLI as is
	case <-ctx.Done():
	}

	s.scans.CancelAll()
	_ = s.session.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("api server shutdown")
	}
	return nil
}

// ListenAndServe listens on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", ":"+strconv.Itoa(s.cfg.APIPort()))
	if err != nil {
		return err //nolint:wrapcheck // listen errors are descriptive
	}
	return s.Serve(ctx, l)
}
