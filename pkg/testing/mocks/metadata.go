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

package mocks

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/metadata"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of metadata.Provider using
// testify/mock.
type MockProvider struct {
	mock.Mock
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Lookup mocks a metadata lookup.
func (m *MockProvider) Lookup(
	ctx context.Context,
	title string,
	year int,
	kind catalog.Kind,
) (*metadata.Result, error) {
	args := m.Called(ctx, title, year, kind)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock lookup failed: %w", err)
	}
	if res, ok := args.Get(0).(*metadata.Result); ok {
		return res, nil
	}
	return nil, metadata.ErrNoMatch
}

// ExpectMovie configures a successful movie lookup.
func (m *MockProvider) ExpectMovie(title string, year int, providerID string) *mock.Call {
	return m.On("Lookup", mock.Anything, title, year, catalog.KindMovie).Return(&metadata.Result{
		ProviderID: providerID,
		Kind:       catalog.KindMovie,
		Info:       catalog.Info{Title: title, Year: year},
	}, nil)
}

// ExpectShow configures a successful TV show lookup.
func (m *MockProvider) ExpectShow(title string, year int, providerID string) *mock.Call {
	return m.On("Lookup", mock.Anything, title, year, catalog.KindTVShow).Return(&metadata.Result{
		ProviderID: providerID,
		Kind:       catalog.KindTVShow,
		Info:       catalog.Info{Title: title, Year: year},
	}, nil)
}

// ExpectMiss configures a lookup that finds nothing.
func (m *MockProvider) ExpectMiss(title string, year int, kind catalog.Kind) *mock.Call {
	return m.On("Lookup", mock.Anything, title, year, kind).Return(nil, metadata.ErrNoMatch)
}
