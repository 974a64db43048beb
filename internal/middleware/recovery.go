package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recovery turns handler panics into 500 responses instead of dropped
// connections.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(log.Fields{
					"error":     err,
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				}).Error("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"message": "Internal server error",
						"type":    "internal_error",
					},
				})
			}
		}()
		c.Next()
	}
}

// SafeGo runs fn on a new goroutine with panic recovery. Background
// tasks must never take the process down.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(log.Fields{
					"goroutine": name,
					"error":     err,
					"stack":     string(debug.Stack()),
				}).Error("goroutine panic recovered")
			}
		}()
		fn()
	}()
}
