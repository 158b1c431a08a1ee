package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamprecieee/distributed-notification-system/internal/health"
)

type HealthHandler struct {
	aggregator *health.Aggregator
}

func NewHealthHandler(a *health.Aggregator) *HealthHandler {
	return &HealthHandler{aggregator: a}
}

// Health implements GET /health: the full report, i.e. the rolled-up
// status, a timestamp, and the per-dependency checks.
func (h *HealthHandler) Health(c *gin.Context) {
	report := h.aggregator.CheckAll(c.Request.Context())
	c.JSON(statusCode(report.Status), report)
}

// Services implements GET /health/services: same report, broken out
// per dependency.
func (h *HealthHandler) Services(c *gin.Context) {
	report := h.aggregator.CheckAll(c.Request.Context())
	c.JSON(statusCode(report.Status), report.Checks)
}

func statusCode(s health.Status) int {
	if s == health.Down {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
