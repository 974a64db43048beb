package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/monitoring"
	netx "recharge-mcp-go/internal/netutil"
)

// managementRemoteGuard enforces local-only management access by
// default. When remote access is enabled, an optional IP/CIDR
// allowlist applies. Decisions are recorded in metrics.
func managementRemoteGuard(routePrefix string, mgr *config.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := mgr.Current()
		// Gin's ClientIP honors TrustedProxies; with none configured it
		// falls back to the socket peer.
		ip := net.ParseIP(strings.TrimSpace(c.ClientIP()))
		src := netx.ClassifyClientSource(ip)
		if src == "loopback" {
			monitoring.ManagementAccessTotal.WithLabelValues(routePrefix, "allow", src).Inc()
			c.Next()
			return
		}
		if !cfg.Security.ManagementAllowRemote {
			monitoring.ManagementAccessTotal.WithLabelValues(routePrefix, "deny", src).Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "remote management disabled"})
			return
		}
		if nets := parseIPNets(cfg.Security.ManagementRemoteAllowIPs); len(nets) > 0 && !ipInNets(ip, nets) {
			monitoring.ManagementAccessTotal.WithLabelValues(routePrefix, "deny", src).Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "ip not allowed for management"})
			return
		}
		monitoring.ManagementAccessTotal.WithLabelValues(routePrefix, "allow", src).Inc()
		c.Next()
	}
}

// managementAuth requires the management key on every management route.
// With no key configured the whole surface is rejected rather than
// left open.
func managementAuth(mgr *config.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := mgr.Current()
		if !config.ManagementAuthConfigured(cfg) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "management api not configured"})
			return
		}
		key := managementKeyFrom(c)
		if !config.CheckManagementKey(cfg, key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid management key"})
			return
		}
		c.Next()
	}
}

func managementKeyFrom(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if v := strings.TrimSpace(c.GetHeader("X-Management-Key")); v != "" {
		return v
	}
	// Websocket clients cannot set headers from browsers, allow a query
	// parameter as last resort.
	return strings.TrimSpace(c.Query("key"))
}

func parseIPNets(list []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ipnet, err := net.ParseCIDR(s); err == nil {
			out = append(out, ipnet)
			continue
		}
		if ip := net.ParseIP(s); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			mask := net.CIDRMask(bits, bits)
			out = append(out, &net.IPNet{IP: ip, Mask: mask})
		}
	}
	return out
}

func ipInNets(ip net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
