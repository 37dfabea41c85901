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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var verr *validation.Error
	switch {
	case errors.As(err, &verr),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.Is(err, profiles.ErrInvalidProfile),
		errors.Is(err, scan.ErrUnknownMode),
		errors.Is(err, remote.ErrUnsupportedKind):
		status = http.StatusBadRequest
	case errors.Is(err, profiles.ErrNotFound), errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, scan.ErrScanInProgress):
		status = http.StatusConflict
	case errors.Is(err, config.ErrMissingAPIKey), errors.Is(err, scan.ErrNoProvider):
		status = http.StatusPreconditionFailed
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("api request failed")
	}
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

var errNotFound = errors.New("not found")

// queryInt parses an optional integer query parameter. Missing or
// malformed values are zero and left for validation to judge.
func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// library aggregates the catalogs of every profile.
func (s *Server) library() (*catalog.Library, error) {
	ps, err := s.profiles.List()
	if err != nil {
		return nil, err //nolint:wrapcheck // store errors are descriptive
	}
	ids := make([]string, 0, len(ps))
	for i := range ps {
		ids = append(ids, ps[i].ID)
	}
	return catalog.NewLibrary(s.catalogs.LoadAll(ids)), nil
}

func (s *Server) handleBrowse(kind catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := models.BrowseParams{
			Filter: r.URL.Query().Get("filter"),
			Value:  r.URL.Query().Get("value"),
			Page:   queryInt(r, "page"),
		}
		if err := validation.DefaultValidator.Validate(&params); err != nil {
			writeError(w, err)
			return
		}
		lib, err := s.library()
		if err != nil {
			writeError(w, err)
			return
		}

		filter := catalog.Filter(params.Filter)
		if filter == "" {
			filter = catalog.FilterAll
		}
		entries, info := lib.Browse(catalog.Query{
			Kind:     kind,
			Filter:   filter,
			Value:    params.Value,
			Page:     params.Page,
			PageSize: s.cfg.PageSize(),
		})
		writeJSON(w, http.StatusOK, models.Page[models.Item]{Items: models.NewItems(entries), Page: info})
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := models.SearchParams{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Page:  queryInt(r, "page"),
	}
	if err := validation.DefaultValidator.Validate(&params); err != nil {
		writeError(w, err)
		return
	}
	lib, err := s.library()
	if err != nil {
		writeError(w, err)
		return
	}
	items, info := catalog.Paginate(models.NewItems(lib.Search(params.Query)), params.Page, s.cfg.PageSize())
	writeJSON(w, http.StatusOK, models.Page[models.Item]{Items: items, Page: info})
}

func (s *Server) handleYears(kind catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		lib, err := s.library()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]int{"years": lib.Years(kind)})
	}
}

func (s *Server) handleGenres(kind catalog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		lib, err := s.library()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"genres": lib.Genres(kind)})
	}
}

func handleLetters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"letters": strings.Split(catalog.Letters, "")})
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	lib, err := s.library()
	if err != nil {
		writeError(w, err)
		return
	}
	m, ok := lib.Movie(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.NewItem(m))
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	lib, err := s.library()
	if err != nil {
		writeError(w, err)
		return
	}
	show, ok := lib.Show(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, models.NewItem(show))
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	lib, err := s.library()
	if err != nil {
		writeError(w, err)
		return
	}
	seasons, ok := lib.Seasons(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, errNotFound)
		return
	}
	items, info := catalog.Paginate(seasons, queryInt(r, "page"), s.cfg.PageSize())
	writeJSON(w, http.StatusOK, models.Page[string]{Items: items, Page: info})
}

func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	lib, err := s.library()
	if err != nil {
		writeError(w, err)
		return
	}
	episodes, ok := lib.Episodes(chi.URLParam(r, "id"), chi.URLParam(r, "season"))
	if !ok {
		writeError(w, errNotFound)
		return
	}
	items, info := catalog.Paginate(episodes, queryInt(r, "page"), s.cfg.PageSize())
	writeJSON(w, http.StatusOK, models.Page[catalog.Episode]{Items: items, Page: info})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	params := models.PlayParams{
		ProfileID: r.URL.Query().Get("profile"),
		Path:      r.URL.Query().Get("path"),
	}
	if err := validation.DefaultValidator.Validate(&params); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.profiles.Get(params.ProfileID)
	if err != nil {
		writeError(w, err)
		return
	}
	u, err := remote.PlayableURL(p.Endpoint(), params.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PlayResponse{URL: u})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	sums, err := s.profiles.Summaries()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProfilesResponse{Profiles: sums})
}

func readProfile(w http.ResponseWriter, r *http.Request) (profiles.Profile, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return profiles.Profile{}, validation.ErrInvalidParams
	}
	var params models.ProfileParams
	if err := validation.ValidateAndUnmarshal(body, &params); err != nil {
		return profiles.Profile{}, err
	}
	return profiles.Profile{
		Name:      params.Name,
		Kind:      remote.Kind(params.Kind),
		Host:      params.Host,
		Path:      params.Path,
		User:      params.User,
		Pass:      params.Pass,
		Anonymous: params.Anonymous,
	}, nil
}

func (s *Server) handleAddProfile(w http.ResponseWriter, r *http.Request) {
	p, err := readProfile(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	added, err := s.profiles.Add(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := readProfile(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := s.profiles.Update(p); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.profiles.Get(p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.scans.Exclusive(id, func() error {
		return s.profiles.Delete(id) //nolint:wrapcheck // mapped by writeError
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func scanResponse(sess *scan.Session) models.ScanResponse {
	return models.ScanResponse{
		SessionID: sess.ID,
		ProfileID: sess.ProfileID,
		Mode:      sess.Mode,
		Progress:  sess.Progress(),
	}
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, validation.ErrInvalidParams)
		return
	}
	var params models.ScanParams
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := validation.ValidateAndUnmarshal(body, &params); err != nil {
			writeError(w, err)
			return
		}
	}
	mode := scan.ModeIncremental
	if params.Mode != "" {
		mode = scan.Mode(params.Mode)
	}

	p, err := s.profiles.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	provider, err := s.providers()
	if err != nil {
		writeError(w, err)
		return
	}

	// The scan outlives the request.
	sess, err := s.scans.Start(context.WithoutCancel(r.Context()), scan.Config{
		Profile:       *p,
		Provider:      provider,
		Mode:          mode,
		CrawlWorkers:  s.cfg.CrawlWorkers(),
		EnrichWorkers: s.cfg.EnrichWorkers(),
		Timeout:       config.ListingTimeout,
		// The profile may have been deleted since it was loaded.
		Precheck: func() error {
			_, err := s.profiles.Get(p.ID)
			return err //nolint:wrapcheck // mapped by writeError
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, scanResponse(sess))
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.scans.Session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse(sess))
}

func (s *Server) handleCancelScan(w http.ResponseWriter, r *http.Request) {
	if !s.scans.Cancel(chi.URLParam(r, "id")) {
		writeError(w, errNotFound)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
