package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth protects the MCP endpoint with a static token. An empty
// configured token disables the check, which suits local single-user
// deployments.
func BearerAuth(token func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		want := strings.TrimSpace(token())
		if want == "" {
			c.Next()
			return
		}

		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		var got string
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			got = strings.TrimSpace(auth[7:])
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Unauthorized", "type": "auth_error"},
			})
			return
		}
		c.Next()
	}
}
