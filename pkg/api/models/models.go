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

package models

import (
	"encoding/json"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/profiles"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
)

const (
	NotificationScanStarted   = "scan.started"
	NotificationScanProgress  = "scan.progress"
	NotificationScanFinished  = "scan.finished"
	NotificationScanCancelled = "scan.cancelled"
	NotificationScanFailed    = "scan.failed"
)

// Notification is a message pushed to every websocket client.
type Notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Item is one movie or show as returned by browse and search.
type Item struct {
	Kind     catalog.Kind     `json:"kind"`
	ID       string           `json:"id"`
	Art      catalog.Art      `json:"art"`
	Sources  []catalog.Source `json:"sources,omitempty"`
	Seasons  []string         `json:"seasons,omitempty"`
	Info     catalog.Info     `json:"info"`
	Episodes int              `json:"episodes,omitempty"`
}

// NewItem flattens a catalog entry for the wire.
func NewItem(e catalog.CatalogEntry) Item {
	item := Item{
		Kind: e.Kind(),
		ID:   e.ID(),
		Info: e.Meta(),
		Art:  e.Artwork(),
	}
	switch v := e.(type) {
	case *catalog.MovieEntry:
		item.Sources = v.Sources
	case *catalog.TvShowEntry:
		item.Seasons = v.SeasonNames()
		item.Episodes = v.EpisodeCount()
	}
	return item
}

func NewItems(entries []catalog.CatalogEntry) []Item {
	out := make([]Item, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewItem(e))
	}
	return out
}

type Page[T any] struct {
	Items []T              `json:"items"`
	Page  catalog.PageInfo `json:"page"`
}

type PlayResponse struct {
	URL string `json:"url"`
}

type ProfilesResponse struct {
	Profiles []profiles.Summary `json:"profiles"`
}

// BrowseParams are the query parameters of a catalog page.
type BrowseParams struct {
	Filter string `validate:"omitempty,oneof=all popular alpha year genre"`
	Value  string `validate:"required_if=Filter alpha,required_if=Filter year,required_if=Filter genre"`
	Page   int    `validate:"gte=0"`
}

type SearchParams struct {
	Query string `validate:"required,max=200"`
	Page  int    `validate:"gte=0"`
}

type PlayParams struct {
	ProfileID string `validate:"required"`
	Path      string `validate:"required,startswith=/"`
}

type ScanParams struct {
	Mode string `json:"mode" validate:"omitempty,oneof=full incremental"`
}

// ScanResponse describes a running scan.
type ScanResponse struct {
	SessionID string     `json:"sessionId"`
	ProfileID string     `json:"profileId"`
	Mode      scan.Mode  `json:"mode"`
	Progress  scan.Event `json:"progress"`
}

// ProfileParams is the body of profile create and update requests.
type ProfileParams struct {
	Name      string `json:"name"`
	Kind      string `json:"type"`
	Host      string `json:"host"`
	Path      string `json:"path"`
	User      string `json:"user"`
	Pass      string `json:"pass"`
	Anonymous bool   `json:"anonymous"`
}
