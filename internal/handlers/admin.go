package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storyarc/narrative-backend/internal/services"
)

type AdminHandler struct {
	analyticsService services.AnalyticsService
}

func NewAdminHandler(analyticsService services.AnalyticsService) *AdminHandler {
	return &AdminHandler{analyticsService: analyticsService}
}

func (ah *AdminHandler) Analytics(c *gin.Context) {
	snapshot, err := ah.analyticsService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
