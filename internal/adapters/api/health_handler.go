package api

import (
	"net/http"

	"floodmap.app/internal/ports"
	"github.com/gin-gonic/gin"
)

const healthyStatus = "healthy"

// HealthResponse aggregates component health
type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
}

// getHealth handles GET /health requests
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	statuses := s.healthChecker.CheckAll(c.Request.Context())

	overall := healthyStatus
	for _, status := range statuses {
		if status.Status != healthyStatus {
			overall = "degraded"
			break
		}
	}

	code := http.StatusOK
	if overall != healthyStatus {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{Status: overall, Components: statuses})
}
