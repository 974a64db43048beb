package management

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"recharge-mcp-go/internal/constants"
)

// GetSystem reports process and task information.
func (h *Handler) GetSystem(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	out := gin.H{
		"version":    constants.GetFullVersion(),
		"go_version": runtime.Version(),
		"uptime_sec": int(time.Since(h.startTime).Seconds()),
		"goroutines": runtime.NumGoroutine(),
		"heap_bytes": mem.HeapAlloc,
		"timestamp":  time.Now().Unix(),
	}
	if h.tasks != nil {
		out["tasks"] = h.tasks.Stats()
	}
	c.JSON(http.StatusOK, out)
}

// GetUsage returns the tool usage statistics snapshot.
func (h *Handler) GetUsage(c *gin.Context) {
	if h.usage == nil {
		c.JSON(http.StatusOK, gin.H{"stats": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": h.usage.Snapshot()})
}
