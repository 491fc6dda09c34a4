package handler

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/edirooss/museq-server/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DebugHandler exposes the engine's internal view for diagnostics.
// Admin-only; mounted behind the auth middleware.
type DebugHandler struct {
	log *zap.Logger
	svc *service.QueueService
}

func NewDebugHandler(log *zap.Logger, svc *service.QueueService) *DebugHandler {
	return &DebugHandler{log: log.Named("debug"), svc: svc}
}

// EngineState handles GET /debug/engine: a spew dump of the engine's
// primitive snapshot, readable in a terminal.
func (h *DebugHandler) EngineState(c *gin.Context) {
	st := h.svc.DebugState()
	c.String(http.StatusOK, spew.Sdump(st))
}
