package handlers

import (
	"net/http"

	"voicetask/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the last backend health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	if !status.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backends": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm voicetask", "backends": status})
}
