package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker     func() bool
	redisHealthChecker  func() bool
	classifierAvailable func() bool
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Redis      string `json:"redis"`
	Classifier string `json:"classifier"`
	Timestamp  string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
// Nil checkers report their dependency as disconnected or disabled.
func NewHealthController(dbHealthChecker, redisHealthChecker, classifierAvailable func() bool) *HealthController {
	return &HealthController{
		dbHealthChecker:     dbHealthChecker,
		redisHealthChecker:  redisHealthChecker,
		classifierAvailable: classifierAvailable,
	}
}

// Check handles GET /health requests.
// The database is the only hard dependency; redis and the classifier degrade
// their own features without taking the service down.
func (h *HealthController) Check(c *gin.Context) {
	status := "ok"
	dbStatus := "disconnected"
	if h.dbHealthChecker != nil && h.dbHealthChecker() {
		dbStatus = "connected"
	} else {
		status = "degraded"
	}

	redisStatus := "disconnected"
	if h.redisHealthChecker != nil && h.redisHealthChecker() {
		redisStatus = "connected"
	}

	classifierStatus := "disabled"
	if h.classifierAvailable != nil && h.classifierAvailable() {
		classifierStatus = "enabled"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     status,
		Database:   dbStatus,
		Redis:      redisStatus,
		Classifier: classifierStatus,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
