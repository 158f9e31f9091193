package middleware

import (
	"net"
	"net/http"
	"strings"

	"warehouse-in-go/pkg/config"
)

// RemoteIP resolves the client IP for a request. X-Forwarded-For is honored
// only when the direct peer is a trusted proxy; otherwise the peer address
// wins.
func RemoteIP(r *http.Request, cfg *config.WarehouseConfig) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)

	if cfg == nil || peer == nil || !cfg.IsTrustedProxy(peer.String()) {
		return peer
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return peer
	}

	// Rightmost address not belonging to a trusted proxy is the client.
	parts := strings.Split(forwarded, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(parts[i]))
		if ip == nil {
			return peer
		}
		if !cfg.IsTrustedProxy(ip.String()) {
			return ip
		}
	}
	return peer
}
