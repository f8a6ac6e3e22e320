package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/pkg/circuit"
	"github.com/Payphone-Digital/authflow/pkg/health"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	monitor  *health.Monitor
	breakers *circuit.Registry
	now      func() time.Time
}

type HealthCheckResponse struct {
	Status    string               `json:"status"`
	Version   string               `json:"version"`
	Timestamp time.Time            `json:"timestamp"`
	Checks    []health.CheckResult `json:"checks"`
	Breakers  []circuit.Snapshot   `json:"breakers,omitempty"`
}

func NewHealthHandler(monitor *health.Monitor, breakers *circuit.Registry) *HealthHandler {
	return &HealthHandler{
		monitor:  monitor,
		breakers: breakers,
		now:      time.Now,
	}
}

// HealthCheck reports the last monitor round. It does not probe
// dependencies itself, so a burst of probes cannot load the database.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthCheckResponse{
		Status:    "healthy",
		Version:   constants.AppVersion,
		Timestamp: h.now(),
		Checks:    h.monitor.Results(),
	}
	if h.breakers != nil {
		response.Breakers = h.breakers.Snapshots()
	}

	statusCode := http.StatusOK
	if !h.monitor.Healthy() {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}

// BasicHealth is the liveness probe for load balancers.
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   constants.AppVersion,
		"timestamp": h.now(),
	})
}
