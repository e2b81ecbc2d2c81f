// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/netip"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/models"
)

// RestrictIPs only lets requests through from the allowed addresses or
// CIDR prefixes. An empty list allows everyone. Refusals are audited as
// security violations.
func RestrictIPs(allowed []string, auditor *audit.Logger) func(http.HandlerFunc) http.HandlerFunc {
	prefixes := parsePrefixes(allowed)

	return func(next http.HandlerFunc) http.HandlerFunc {
		if len(allowed) == 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			ip := GetClientIP(r)
			if permitted(prefixes, ip) {
				next(w, r)
				return
			}

			entry := models.AuditEntry{
				Action:      models.ActionSecurityViolation,
				Description: "Request from disallowed IP to " + r.URL.Path,
				IPAddress:   ip,
				UserAgent:   r.UserAgent(),
			}
			if id := VoterID(r); id != "" {
				entry.VoterID = &id
			}
			auditor.Record(r.Context(), entry)

			ErrorResponse(w, http.StatusForbidden, "Voting is not allowed from this network")
		}
	}
}

// parsePrefixes turns addresses and CIDR prefixes into prefixes, skipping
// entries that are neither.
func parsePrefixes(list []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, a := range list {
		if p, err := netip.ParsePrefix(a); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(a); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return prefixes
}

func permitted(prefixes []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
