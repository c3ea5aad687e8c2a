package http

import (
	"net"
	"net/http"
	"strings"
	"unicode"
)

// Forwarding headers are honored only when the direct peer sits on a
// loopback or private network, where a reverse proxy would be.
var proxyNets []*net.IPNet

func init() {
	for _, cidr := range []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	} {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		proxyNets = append(proxyNets, n)
	}
}

func fromTrustedProxy(ip net.IP) bool {
	for _, n := range proxyNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP resolves the originating client address. X-Forwarded-For
// and X-Real-IP count only when the direct peer is a trusted proxy; any
// other peer is taken at its TCP address.
func extractClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	ip := net.ParseIP(peer)
	if ip == nil || !fromTrustedProxy(ip) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return peer
}

// sanitizeInput trims surrounding whitespace and drops control characters,
// keeping tab, newline, and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(s))
}
