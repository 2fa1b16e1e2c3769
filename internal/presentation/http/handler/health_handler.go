package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/pkg/logger"
	"go.uber.org/zap"
)

// Pinger is anything whose backing store can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	name string
	db   Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(name string, db Pinger) *HealthHandler {
	return &HealthHandler{name: name, db: db}
}

// Check answers 200 when the database responds and 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"service":  h.name,
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  h.name,
		"database": "ok",
	})
}
