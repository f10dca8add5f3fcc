package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

type HealthHandler struct {
	BaseHandler
	serviceManager services.ServiceManager
	started        time.Time
}

func NewHealthHandler(serviceManager services.ServiceManager, logger utils.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler:    NewBaseHandler(logger),
		serviceManager: serviceManager,
		started:        time.Now(),
	}
}

// Health pings the database and cache
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.serviceManager.HealthCheck(ctx); err != nil {
		h.LogError(c, err, "Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
