package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// ============================================
// Dashboard Handler
// ============================================

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	byStage := make([]models.StageSummary, len(stats.LeadsByStage))
	for i, s := range stats.LeadsByStage {
		byStage[i] = models.StageSummary{Key: s.Stage, Stage: s.Stage, Count: s.Count, Value: s.Value}
	}

	c.JSON(http.StatusOK, models.DashboardStatsResponse{
		Counts: models.DashboardCounts{
			Customers:     stats.Counts.Customers,
			Leads:         stats.Counts.Leads,
			Tasks:         stats.Counts.Tasks,
			TasksDueToday: stats.Counts.TasksDueToday,
		},
		LeadsByStage: byStage,
		RecentActivities: models.RecentActivities{
			Tasks: toTaskList(stats.RecentActivities.Tasks),
			Leads: toLeadList(stats.RecentActivities.Leads),
		},
	})
}

func (h *DashboardHandler) LeadPerformance(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	days, err := h.dashboardService.LeadPerformance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}

	response := make([]models.DailyPerformance, len(days))
	for i, d := range days {
		response[i] = models.DailyPerformance{Key: d.Date, Date: d.Date, Count: d.Count, Value: d.Value}
	}
	c.JSON(http.StatusOK, response)
}
