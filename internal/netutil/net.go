// Package netutil classifies client addresses for the management
// access guard.
package netutil

import (
	"net"
	"net/http"
	"strings"
)

// ExtractIPFromRequest pulls the client IP from proxy headers or the
// socket peer address.
func ExtractIPFromRequest(r *http.Request) net.IP {
	if r == nil {
		return nil
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first := strings.TrimSpace(strings.Split(xf, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		if ip := net.ParseIP(xr); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	return net.ParseIP(host)
}

// ClassifyClientSource labels where a client connects from. The labels
// feed the management access metric and the loopback fast path.
func ClassifyClientSource(ip net.IP) string {
	switch {
	case ip == nil:
		return "unknown"
	case ip.IsLoopback():
		return "loopback"
	case isDockerBridgeIP(ip):
		return "docker_bridge"
	case ip.IsPrivate():
		return "private"
	default:
		return "public"
	}
}

// Docker's default bridge hands containers 172.17.0.0/16 addresses.
func isDockerBridgeIP(ip net.IP) bool {
	ip4 := ip.To4()
	return ip4 != nil && ip4[0] == 172 && ip4[1] == 17
}
