package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

// create a new instance of the health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	// no hard dependencies at startup, the user store is loaded before routing
	ctx.JSON(200, gin.H{"status": "ready"})
}
