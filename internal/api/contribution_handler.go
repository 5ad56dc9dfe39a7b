package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/middleware"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// ContributionHandler handles contribution endpoints.
type ContributionHandler struct {
	contributionService core.ContributionService
	logger              *zap.Logger
}

func NewContributionHandler(cs core.ContributionService, logger *zap.Logger) *ContributionHandler {
	return &ContributionHandler{contributionService: cs, logger: logger}
}

// CreateContribution handles POST /api/contribution
func (h *ContributionHandler) CreateContribution(c *gin.Context) {
	var req models.CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	res, err := h.contributionService.CreateContribution(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Contribution created successfully and linked to disaster", res)
}

// ListContributions handles GET /api/contribution
func (h *ContributionHandler) ListContributions(c *gin.Context) {
	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	filter := query.ContributionFilter(c.Request.URL.Query(), h.logger)
	items, pagination, err := h.contributionService.ListContributions(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, items, pagination)
}

// GetContribution handles GET /api/contribution/:id
func (h *ContributionHandler) GetContribution(c *gin.Context) {
	view, err := h.contributionService.GetContribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// UpdateContribution handles PUT /api/contribution/:id
// The body is decoded by the service once the caller is known to own the
// contribution, so non-owners get 403 whatever they send.
func (h *ContributionHandler) UpdateContribution(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	view, err := h.contributionService.UpdateContribution(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), payload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Contribution updated successfully", view)
}

// DeleteContribution handles DELETE /api/contribution/:id
func (h *ContributionHandler) DeleteContribution(c *gin.Context) {
	if err := h.contributionService.DeleteContribution(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Contribution deleted successfully", nil)
}
