package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker is what the handler needs from the storage layer; the
// db package's Health method satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	checker HealthChecker
	logger  *zap.Logger
}

func NewHealthHandler(checker HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

// Check handles GET /api/health. Public — load balancers can't carry
// a bearer token. Storage unreachable degrades to 503 without
// crashing the process.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.checker.Health(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, "storage unreachable")
		return
	}

	respondData(c, http.StatusOK, gin.H{"status": "ok"})
}
