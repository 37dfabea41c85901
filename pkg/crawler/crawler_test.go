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

package crawler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/remote"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fastOptions(workers int) Options {
	return Options{Workers: workers, PollInterval: 10 * time.Millisecond}
}

func sorted(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}

func TestRunFindsMediaFiles(t *testing.T) {
	t.Parallel()

	fake := mocks.NewFakeRemote("/movies",
		"/movies/Inception (2010).mkv",
		"/movies/Show/Season 01/S01E01.mkv",
		"/movies/readme.txt",
	)

	paths, err := Run(context.Background(), fake, fastOptions(2))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/movies/Inception (2010).mkv",
		"/movies/Show/Season 01/S01E01.mkv",
	}, sorted(paths))
	assert.Equal(t, fake.Opens(), fake.Closes())
}

func TestRunTotalConnectionFailure(t *testing.T) {
	t.Parallel()

	fake := mocks.NewFakeRemote("/movies", "/movies/a.mkv")
	fake.OpenErr = mocks.ErrAuthFailed

	paths, err := Run(context.Background(), fake, fastOptions(3))
	require.ErrorIs(t, err, ErrTotalConnectionFailure)
	assert.Nil(t, paths)
	assert.Equal(t, 3, fake.Opens())
	assert.Empty(t, fake.Visits())
}

// partialOpener fails the first n Open calls.
type partialOpener struct {
	remote.Opener
	failures atomic.Int32
}

func (p *partialOpener) Open(ctx context.Context) (remote.Conn, error) {
	if p.failures.Add(-1) >= 0 {
		return nil, mocks.ErrAuthFailed
	}
	return p.Opener.Open(ctx)
}

func TestRunPartialConnectivitySucceeds(t *testing.T) {
	t.Parallel()

	fake := mocks.NewFakeRemote("/m", "/m/a.mkv", "/m/sub/b.mp4")
	opener := &partialOpener{Opener: fake}
	opener.failures.Store(3)

	paths, err := Run(context.Background(), opener, fastOptions(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"/m/a.mkv", "/m/sub/b.mp4"}, sorted(paths))
}

func TestRunVisitsEachLocationOnce(t *testing.T) {
	t.Parallel()

	fake := mocks.NewFakeRemote("/tv",
		"/tv/A/s1/e1.mkv",
		"/tv/A/s2/e2.mkv",
		"/tv/B/e3.avi",
	)
	// Links back up the tree form cycles.
	fake.AddLink("/tv/A/s1", "up", "/tv/A")
	fake.AddLink("/tv/B", "root", "/tv")

	paths, err := Run(context.Background(), fake, fastOptions(4))
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	for loc, n := range fake.Visits() {
		assert.Equal(t, 1, n, "location %s listed more than once", loc)
	}
	assert.Len(t, fake.Visits(), 5)
}

func TestRunSkipsFailedBranch(t *testing.T) {
	t.Parallel()

	fake := mocks.NewFakeRemote("/m", "/m/ok/a.mkv", "/m/bad/b.mkv", "/m/bad/deeper/c.mkv")
	fake.ListErr["/m/bad"] = errors.New("550 permission denied")

	paths, err := Run(context.Background(), fake, fastOptions(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"/m/ok/a.mkv"}, paths)
}

func TestRunCancelledReturnsNoPaths(t *testing.T) {
	t.Parallel()

	files := make([]string, 0, 50)
	for i := range 50 {
		files = append(files, fmt.Sprintf("/m/d%02d/f.mkv", i))
	}
	fake := mocks.NewFakeRemote("/m", files...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var listed atomic.Int32
	fake.BeforeList = func(_ context.Context, _ string) {
		if listed.Add(1) == 5 {
			cancel()
		}
	}

	paths, err := Run(ctx, fake, fastOptions(3))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, paths)
	assert.Less(t, len(fake.Visits()), 51)
}

func TestRunReportsProgress(t *testing.T) {
	t.Parallel()

	fake := mocks.NewFakeRemote("/m", "/m/a/1.mkv", "/m/b/2.mkv", "/m/c/3.mkv")

	var mu sync.Mutex
	var updates []Progress
	opts := fastOptions(1)
	opts.OnProgress = func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, p)
	}

	_, err := Run(context.Background(), fake, opts)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 4)
	assert.Equal(t, "/m", updates[0].Location)
	for _, u := range updates {
		assert.GreaterOrEqual(t, u.Percent, 0)
		assert.LessOrEqual(t, u.Percent, CrawlPercentMax)
	}
	assert.Equal(t, 2, updates[3].Found)
}

func TestRunPathSetProperty(t *testing.T) {
	t.Parallel()

	segment := rapid.SampledFrom([]string{"a", "b", "c", "Season 01"})
	leaf := rapid.SampledFrom([]string{"x.mkv", "y.MP4", "z.txt", "w.webm"})

	rapid.Check(t, func(t *rapid.T) {
		segs := rapid.SliceOfN(rapid.SliceOfN(segment, 0, 3), 1, 12).Draw(t, "dirs")
		files := make([]string, 0, len(segs))
		for i, s := range segs {
			p := "/root"
			for _, part := range s {
				p += "/" + part
			}
			files = append(files, p+"/"+leaf.Draw(t, fmt.Sprintf("leaf%d", i)))
		}
		workers := rapid.IntRange(1, 6).Draw(t, "workers")

		fake := mocks.NewFakeRemote("/root", files...)
		first, err := Run(context.Background(), fake, fastOptions(workers))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Run(context.Background(), fake, fastOptions(workers))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := fake.MediaPaths()
		if got := sorted(first); !equalStrings(got, want) {
			t.Fatalf("path set mismatch: got %v want %v", got, want)
		}
		if !equalStrings(sorted(first), sorted(second)) {
			t.Fatalf("repeat crawl differs: %v vs %v", first, second)
		}
		for loc, n := range fake.Visits() {
			if n != 2 {
				t.Fatalf("location %s listed %d times over two crawls", loc, n)
			}
		}
	})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
