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

package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanEventNonBlocking(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification)

	done := make(chan struct{})
	go func() {
		ScanEvent(ns, scan.Event{Status: scan.StatusProgress})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ScanEvent blocked on an unbuffered channel")
	}
}

func TestScanEventPayload(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	ScanEvent(ns, scan.Event{
		Status:    scan.StatusFinished,
		SessionID: "s1",
		ProfileID: "p1",
		Added:     7,
	})

	n := <-ns
	assert.Equal(t, models.NotificationScanFinished, n.Method)

	var ev scan.Event
	require.NoError(t, json.Unmarshal(n.Params, &ev))
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, 7, ev.Added)
}

func TestScanSinkDropsWhenFull(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	ns <- models.Notification{Method: "prefill"}

	sink := ScanSink(ns)
	for range 10 {
		sink(scan.Event{Status: scan.StatusProgress})
	}

	msg := <-ns
	assert.Equal(t, "prefill", msg.Method)
	assert.Empty(t, ns)
}

func TestMethodFor(t *testing.T) {
	t.Parallel()

	tests := map[scan.Status]string{
		scan.StatusStarted:   models.NotificationScanStarted,
		scan.StatusProgress:  models.NotificationScanProgress,
		scan.StatusFinished:  models.NotificationScanFinished,
		scan.StatusCancelled: models.NotificationScanCancelled,
		scan.StatusFailed:    models.NotificationScanFailed,
	}
	for status, want := range tests {
		assert.Equal(t, want, MethodFor(status), string(status))
	}
}
