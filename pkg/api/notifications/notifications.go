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

	"github.com/ZaparooProject/zaparoo-indexer/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-indexer/pkg/scan"
	"github.com/rs/zerolog/log"
)

// sendNotification never blocks. A full channel drops the notification.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("failed to marshal notification")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification channel full, dropping")
	}
}

// MethodFor maps a scan status to its notification method.
func MethodFor(status scan.Status) string {
	switch status {
	case scan.StatusStarted:
		return models.NotificationScanStarted
	case scan.StatusFinished:
		return models.NotificationScanFinished
	case scan.StatusCancelled:
		return models.NotificationScanCancelled
	case scan.StatusFailed:
		return models.NotificationScanFailed
	default:
		return models.NotificationScanProgress
	}
}

func ScanEvent(ns chan<- models.Notification, ev scan.Event) {
	sendNotification(ns, MethodFor(ev.Status), ev)
}

// ScanSink adapts a notification channel to a scan event sink.
func ScanSink(ns chan<- models.Notification) scan.Sink {
	return func(ev scan.Event) {
		ScanEvent(ns, ev)
	}
}
