package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/midas/pkg/health"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	monitor   *health.Monitor
	version   string
	startedAt time.Time
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

func NewHealthHandler(monitor *health.Monitor, version string) *HealthHandler {
	return &HealthHandler{
		monitor:   monitor,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthCheck runs the registered checks and answers 503 when a critical
// one, the store, fails.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	results := h.monitor.CheckAll(c.Request.Context())

	response := HealthCheckResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]HealthCheck, len(results)),
	}
	for name, result := range results {
		response.Checks[name] = HealthCheck{
			Status:    result.Status.String(),
			Message:   result.Message,
			LatencyMs: result.Latency.Milliseconds(),
		}
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
