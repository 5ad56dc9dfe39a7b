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

// RescueTeamHandler handles rescue team endpoints.
type RescueTeamHandler struct {
	teamService core.RescueTeamService
	logger      *zap.Logger
}

func NewRescueTeamHandler(ts core.RescueTeamService, logger *zap.Logger) *RescueTeamHandler {
	return &RescueTeamHandler{teamService: ts, logger: logger}
}

// CreateTeam handles POST /api/rescue-team
func (h *RescueTeamHandler) CreateTeam(c *gin.Context) {
	var req models.CreateRescueTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	team, err := h.teamService.CreateTeam(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Rescue team created successfully", team)
}

// ListTeams handles GET /api/rescue-team
func (h *RescueTeamHandler) ListTeams(c *gin.Context) {
	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	items, pagination, err := h.teamService.ListTeams(c.Request.Context(), query.RescueTeamFilter(c.Request.URL.Query()), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, items, pagination)
}

// AvailableTeams handles GET /api/rescue-team/available
func (h *RescueTeamHandler) AvailableTeams(c *gin.Context) {
	teams, err := h.teamService.AvailableTeams(c.Request.Context(), c.Query("disasterId"), c.Query("specialization"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", teams)
}

// GetTeam handles GET /api/rescue-team/:id
func (h *RescueTeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamService.GetTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", team)
}

// UpdateTeam handles PUT /api/rescue-team/:id
func (h *RescueTeamHandler) UpdateTeam(c *gin.Context) {
	var req models.UpdateRescueTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	team, err := h.teamService.UpdateTeam(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Rescue team updated successfully", team)
}

// DeleteTeam handles DELETE /api/rescue-team/:id
func (h *RescueTeamHandler) DeleteTeam(c *gin.Context) {
	if err := h.teamService.DeleteTeam(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Rescue team deleted successfully", nil)
}

// Assign handles POST /api/rescue-team/assign
func (h *RescueTeamHandler) Assign(c *gin.Context) {
	var req models.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	team, err := h.teamService.Assign(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Rescue team assigned to disaster successfully", team)
}

// Unassign handles POST /api/rescue-team/unassign
func (h *RescueTeamHandler) Unassign(c *gin.Context) {
	var req models.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	team, err := h.teamService.Unassign(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Rescue team unassigned from disaster successfully", team)
}
