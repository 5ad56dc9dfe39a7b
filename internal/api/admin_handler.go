package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/middleware"
)

// AdminHandler handles maintenance endpoints.
type AdminHandler struct {
	reconcileService core.ReconcileService
	logger           *zap.Logger
}

func NewAdminHandler(rs core.ReconcileService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{reconcileService: rs, logger: logger}
}

// Reconcile handles POST /api/admin/reconcile[?prune=true]
func (h *AdminHandler) Reconcile(c *gin.Context) {
	prune := false
	if v := c.Query("prune"); v != "" {
		p, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "Invalid prune parameter", err)
			return
		}
		prune = p
	}
	report, err := h.reconcileService.Run(c.Request.Context(), middleware.ActorFrom(c), prune)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Reconciliation complete", report)
}
