package handlers

import (
	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

// GetDashboard returns the landing data for the caller's role.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	data, err := h.Dashboard.Build(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Dashboard fetched successfully", data)
}
