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

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/config"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/shared/httpclient"
	"github.com/cenkalti/backoff/v5"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	PosterBaseURL  = "https://image.tmdb.org/t/p/w500"
	FanartBaseURL  = "https://image.tmdb.org/t/p/original"
	youTubeWatch   = "https://www.youtube.com/watch?v="
	tmdbSite       = "https://www.themoviedb.org"

	maxRetries = 3
	// Small bonus so an exact year breaks near-ties between remakes.
	yearMatchBonus = 0.05
)

var ErrAPIStatus = errors.New("tmdb api error")

// TMDB implements Provider against The Movie Database v3 API.
type TMDB struct {
	client        *httpclient.Client
	limiter       *rate.Limiter
	baseURL       string
	apiKey        string
	language      string
	trailerSource string
	retryBase     time.Duration
}

type Option func(*TMDB)

func WithBaseURL(u string) Option {
	return func(t *TMDB) { t.baseURL = strings.TrimRight(u, "/") }
}

func WithLanguage(lang string) Option {
	return func(t *TMDB) { t.language = lang }
}

// WithTrailerSource selects config.TrailerSourceYouTube or
// config.TrailerSourceTMDB.
func WithTrailerSource(src string) Option {
	return func(t *TMDB) { t.trailerSource = src }
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(t *TMDB) {
		if perSecond <= 0 {
			t.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRetryInterval sets the initial backoff between retried requests.
func WithRetryInterval(d time.Duration) Option {
	return func(t *TMDB) { t.retryBase = d }
}

func NewTMDB(apiKey string, opts ...Option) (*TMDB, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, config.ErrMissingAPIKey
	}
	t := &TMDB{
		client:        httpclient.NewClientWithTimeout(config.MetadataTimeout),
		limiter:       rate.NewLimiter(rate.Limit(4), 1),
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		language:      "en-US",
		trailerSource: config.TrailerSourceYouTube,
		retryBase:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// NewTMDBFromConfig builds a client from the [tmdb] config section.
func NewTMDBFromConfig(cfg *config.Instance) (*TMDB, error) {
	return NewTMDB(
		cfg.TMDBAPIKey(),
		WithLanguage(cfg.TMDBLanguage()),
		WithTrailerSource(cfg.TrailerSource()),
		WithRateLimit(cfg.TMDBRequestsPerSecond()),
	)
}

// Lookup searches for the title, picks the closest result, and fetches its
// details and trailer.
func (t *TMDB) Lookup(ctx context.Context, title string, year int, kind catalog.Kind) (*Result, error) {
	if title == "" {
		return nil, ErrNoMatch
	}
	segment, err := pathSegment(kind)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", title)
	if year > 0 {
		if kind == catalog.KindTVShow {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("year", strconv.Itoa(year))
		}
	}

	var search searchResponse
	if err := t.getJSON(ctx, "/search/"+segment, params, &search); err != nil {
		return nil, fmt.Errorf("search %q: %w", title, err)
	}
	best, ok := bestMatch(title, year, search.Results)
	if !ok {
		return nil, ErrNoMatch
	}

	id := strconv.Itoa(best.ID)
	var d details
	if err := t.getJSON(ctx, "/"+segment+"/"+id, nil, &d); err != nil {
		return nil, fmt.Errorf("details %s/%s: %w", segment, id, err)
	}

	log.Debug().
		Str("query", title).
		Str("match", best.displayTitle()).
		Str("id", id).
		Msg("tmdb match")

	return &Result{
		ProviderID: id,
		Kind:       kind,
		Info:       t.info(d, t.trailer(ctx, segment, id)),
		Art:        artwork(d),
	}, nil
}

func (*TMDB) info(d details, trailer string) catalog.Info {
	info := catalog.Info{
		Title:         firstNonEmpty(d.Title, d.Name),
		OriginalTitle: firstNonEmpty(d.OriginalTitle, d.OriginalName),
		Plot:          d.Overview,
		Rating:        d.VoteAverage,
		Year:          yearOf(firstNonEmpty(d.ReleaseDate, d.FirstAirDate)),
		TrailerRef:    trailer,
	}
	for _, g := range d.Genres {
		info.Genres = append(info.Genres, g.Name)
	}
	return info
}

// trailer prefers a YouTube trailer from the title's video list and falls
// back to the title's video page on TMDb. Video lookup errors only cost the
// preferred source.
func (t *TMDB) trailer(ctx context.Context, segment, id string) string {
	fallback := fmt.Sprintf("%s/%s/%s/videos", tmdbSite, segment, id)
	if t.trailerSource == config.TrailerSourceTMDB {
		return fallback
	}

	// Videos are requested without a language so untranslated trailers
	// are still found.
	var videos videosResponse
	if err := t.getJSON(ctx, "/"+segment+"/"+id+"/videos", url.Values{"language": {""}}, &videos); err != nil {
		log.Debug().Err(err).Str("id", id).Msg("tmdb videos lookup failed")
		return fallback
	}
	for _, v := range videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" && v.Key != "" {
			return youTubeWatch + v.Key
		}
	}
	return fallback
}

func artwork(d details) catalog.Art {
	var art catalog.Art
	if d.PosterPath != "" {
		art.Poster = PosterBaseURL + d.PosterPath
	}
	if d.BackdropPath != "" {
		art.Fanart = FanartBaseURL + d.BackdropPath
	}
	return art
}

// bestMatch scores results by Jaro-Winkler similarity between the query
// and each result's title or original title. Ties keep the provider's
// order.
func bestMatch(query string, year int, results []searchResult) (searchResult, bool) {
	if len(results) == 0 {
		return searchResult{}, false
	}
	q := strings.ToLower(query)
	bestIdx := -1
	var bestScore float32 = -1
	for i, r := range results {
		score := max(
			edlib.JaroWinklerSimilarity(q, strings.ToLower(r.displayTitle())),
			edlib.JaroWinklerSimilarity(q, strings.ToLower(r.originalTitle())),
		)
		if year > 0 && yearOf(r.date()) == year {
			score += yearMatchBonus
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return results[bestIdx], true
}

func (t *TMDB) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	q := url.Values{}
	q.Set("api_key", t.apiKey)
	q.Set("language", t.language)
	for k, v := range params {
		if len(v) == 1 && v[0] == "" {
			q.Del(k)
			continue
		}
		q[k] = v
	}
	reqURL := t.baseURL + endpoint + "?" + q.Encode()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.retryBase

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, t.fetch(ctx, reqURL, out)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxRetries))
	if err != nil {
		return err //nolint:wrapcheck // wrapped by the caller with the endpoint
	}
	return nil
}

// fetch performs one attempt. Client errors are permanent; server errors,
// rate limiting and transport failures are retried.
func (t *TMDB) fetch(ctx context.Context, reqURL string, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
	}

	resp, err := t.client.Get(ctx, reqURL)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err //nolint:wrapcheck // already wrapped by httpclient
	}
	defer httpclient.DrainAndClose(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil {
			return backoff.RetryAfter(secs)
		}
		return fmt.Errorf("%w: rate limited", ErrAPIStatus)
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(ErrNoMatch)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrAPIStatus, resp.StatusCode)
	default:
		var apiErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrAPIStatus, resp.StatusCode, apiErr.StatusMessage))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func pathSegment(kind catalog.Kind) (string, error) {
	switch kind {
	case catalog.KindMovie:
		return "movie", nil
	case catalog.KindTVShow:
		return "tv", nil
	default:
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
}

func yearOf(date string) int {
	head, _, ok := strings.Cut(date, "-")
	if !ok {
		return 0
	}
	y, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return y
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
