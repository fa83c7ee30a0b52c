package handlers

import (
	"net/http"

	"studiobook/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last snapshot from the health monitor.
type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	if h.Monitor == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	status := h.Monitor.Status()
	code, label := http.StatusOK, "ok"
	if !status.Healthy() {
		code, label = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(code, gin.H{"status": label, "dependencies": status})
}
