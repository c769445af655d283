package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdrill/backend/internal/response"
	"github.com/quizdrill/backend/internal/service"
)

// StatisticsHandler serves the admin analytics dashboard.
type StatisticsHandler struct {
	statisticsService *service.StatisticsService
}

func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// Dashboard godoc
// GET /api/v1/admin/statistics
// Returns platform totals, per-topic performance, and recent activity.
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statisticsService.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
