package management

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/errors"
	"recharge-mcp-go/internal/upstream"
)

// GetCredentialStats reports the cached credential store counters.
func (h *Handler) GetCredentialStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.broker.CredentialStats())
}

// PurgeCredentials drops cached session credentials per the request
// selector and returns the audit record.
func (h *Handler) PurgeCredentials(c *gin.Context) {
	var req upstream.PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.broker.PurgeCredentials(c.Request.Context(), req)
	if err != nil {
		if errors.IsKind(err, errors.KindValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
