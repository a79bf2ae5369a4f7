package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Runnable reports whether a background component is accepting work.
type Runnable interface {
	IsRunning() bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	dispatcher Runnable
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dispatcher Runnable) *HealthHandler {
	return &HealthHandler{
		dispatcher: dispatcher,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Workers struct {
		Running bool `json:"running"`
	} `json:"workers"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	response.Workers.Running = h.dispatcher.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.dispatcher.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "worker pool not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
