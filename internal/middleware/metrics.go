package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/monitoring"
)

func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// Metrics records per-route request counters and latency histograms.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		monitoring.HTTPInFlight.Inc()
		c.Next()
		monitoring.HTTPInFlight.Dec()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		sc := statusClass(c.Writer.Status())

		monitoring.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, sc).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, sc).
			Observe(time.Since(start).Seconds())
	}
}
