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

// searchResponse is the body of /search/movie and /search/tv.
type searchResponse struct {
	Results      []searchResult `json:"results"`
	Page         int            `json:"page"`
	TotalResults int            `json:"total_results"`
}

type searchResult struct {
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	Popularity    float64 `json:"popularity"`
	ID            int     `json:"id"`
}

func (r searchResult) displayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func (r searchResult) originalTitle() string {
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

func (r searchResult) date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// details is the body of /movie/{id} and /tv/{id}.
type details struct {
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	Genres        []genre `json:"genres"`
	VoteAverage   float64 `json:"vote_average"`
	ID            int     `json:"id"`
}

type genre struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type videosResponse struct {
	Results []video `json:"results"`
}

type video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type errorResponse struct {
	StatusMessage string `json:"status_message"`
	StatusCode    int    `json:"status_code"`
}
