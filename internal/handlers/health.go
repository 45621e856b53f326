package handlers

import (
	"net/http"

	"playhub/internal/logging"
	"playhub/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	revalidator *services.Revalidator
}

func NewHealthHandler(db *gorm.DB, revalidator *services.Revalidator) *HealthHandler {
	return &HealthHandler{db: db, revalidator: revalidator}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "ok"}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := h.revalidator.Ping(ctx); err != nil {
		checks["redis"] = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"checks": checks, "logs": logging.Counters()})
}
