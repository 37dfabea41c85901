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

package middleware

import (
	"net"
	"net/http"
	"net/netip"

	"github.com/rs/zerolog/log"
)

// ParseRemoteIP extracts the IP from a RemoteAddr string (IP:port format).
func ParseRemoteIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return net.ParseIP(host)
}

// IPFilter is an allowlist of client addresses and networks.
type IPFilter struct {
	prefixes   []netip.Prefix
	configured bool
}

// NewIPFilter parses entries as CIDRs or single addresses. Invalid entries
// are logged and skipped. An empty list allows everyone.
func NewIPFilter(allowed []string) *IPFilter {
	f := &IPFilter{configured: len(allowed) > 0}
	for _, s := range allowed {
		if host, _, err := net.SplitHostPort(s); err == nil {
			s = host
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			f.prefixes = append(f.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			f.prefixes = append(f.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		log.Warn().Str("ip", s).Msg("invalid IP or CIDR in allowed_ips, skipping")
	}
	return f
}

// Empty reports whether the filter allows every address. A list holding
// only invalid entries allows nobody.
func (f *IPFilter) Empty() bool {
	return !f.configured
}

func (f *IPFilter) IsAllowed(remoteAddr string) bool {
	if f.Empty() {
		return true
	}
	ip := ParseRemoteIP(remoteAddr)
	if ip == nil {
		log.Warn().Str("addr", remoteAddr).Msg("failed to parse IP address")
		return false
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	addr = addr.Unmap()
	for _, p := range f.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// HTTPIPFilterMiddleware rejects requests, including websocket upgrades,
// from addresses outside the allowlist.
func HTTPIPFilterMiddleware(filter *IPFilter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !filter.IsAllowed(r.RemoteAddr) {
				log.Debug().
					Str("addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("request from blocked IP")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
