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

package validation

import (
	"testing"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLetter(t *testing.T) {
	t.Parallel()

	type testStruct struct {
		Letter string `validate:"letter"`
	}

	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{name: "empty is valid", value: "", wantError: false},
		{name: "uppercase letter", value: "A", wantError: false},
		{name: "lowercase letter", value: "z", wantError: false},
		{name: "hash symbol", value: "#", wantError: false},
		{name: "multiple letters invalid", value: "AB", wantError: true},
		{name: "number invalid", value: "5", wantError: true},
		{name: "special char invalid", value: "@", wantError: true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(&testStruct{Letter: tt.value})
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "letter must be A-Z or #")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBrowseParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr string
		params  models.BrowseParams
	}{
		{name: "defaults", params: models.BrowseParams{}},
		{name: "popular", params: models.BrowseParams{Filter: "popular", Page: 2}},
		{name: "alpha letter", params: models.BrowseParams{Filter: "alpha", Value: "k"}},
		{name: "alpha hash", params: models.BrowseParams{Filter: "alpha", Value: "#"}},
		{name: "year", params: models.BrowseParams{Filter: "year", Value: "2010"}},
		{name: "genre", params: models.BrowseParams{Filter: "genre", Value: "Drama"}},
		{
			name:    "unknown filter",
			params:  models.BrowseParams{Filter: "rating"},
			wantErr: "filter must be one of",
		},
		{
			name:    "alpha needs value",
			params:  models.BrowseParams{Filter: "alpha"},
			wantErr: "value is required",
		},
		{
			name:    "alpha bad value",
			params:  models.BrowseParams{Filter: "alpha", Value: "ab"},
			wantErr: "value must be A-Z or #",
		},
		{
			name:    "year bad value",
			params:  models.BrowseParams{Filter: "year", Value: "20x0"},
			wantErr: "value must be a year",
		},
		{
			name:    "negative page",
			params:  models.BrowseParams{Page: -1},
			wantErr: "page must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := DefaultValidator.Validate(&tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAndUnmarshal(t *testing.T) {
	t.Parallel()

	var params models.ScanParams
	require.ErrorIs(t, ValidateAndUnmarshal([]byte("  "), &params), ErrMissingParams)
	require.ErrorIs(t, ValidateAndUnmarshal([]byte("{"), &params), ErrInvalidParams)
	assert.Error(t, ValidateAndUnmarshal([]byte(`{"mode":"quick"}`), &params))

	require.NoError(t, ValidateAndUnmarshal([]byte(`{"mode":"incremental"}`), &params))
	assert.Equal(t, "incremental", params.Mode)
}

func TestValidatePlayParams(t *testing.T) {
	t.Parallel()

	err := DefaultValidator.Validate(&models.PlayParams{ProfileID: "p1", Path: "movies/a.mkv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `path must start with "/"`)

	assert.NoError(t, DefaultValidator.Validate(&models.PlayParams{ProfileID: "p1", Path: "/a.mkv"}))
}

func TestErrorHas(t *testing.T) {
	t.Parallel()

	err := DefaultValidator.Validate(&models.BrowseParams{Filter: "alpha", Value: "ab", Page: -2})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("value"))
	assert.True(t, verr.Has("Page"))
	assert.False(t, verr.Has("filter"))
	assert.Len(t, verr.Fields, 2)
}
