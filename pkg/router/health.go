package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusHealthy is the only status the health endpoint reports.
const StatusHealthy = "healthy"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: StatusHealthy, Version: h.opts.Version})
}
