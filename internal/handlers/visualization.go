package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salin-system/internal/middleware"
	"salin-system/internal/services/visualization"
)

type VisualizationHandler struct {
	viz *visualization.Service
}

func NewVisualizationHandler(vizService *visualization.Service) *VisualizationHandler {
	return &VisualizationHandler{viz: vizService}
}

type ScoreSummaryQuery struct {
	Year  int `form:"year"`
	Month int `form:"month"`
}

// ScoreSummary serves the flat rollup list the score table and the org chart
// both consume. Defaults to the current calendar month.
func (h *VisualizationHandler) ScoreSummary(c *gin.Context) {
	var query ScoreSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query: "+err.Error()))
		return
	}

	now := time.Now()
	if query.Year == 0 {
		query.Year = now.Year()
	}
	if query.Month == 0 {
		query.Month = int(now.Month())
	}
	if query.Month < 1 || query.Month > 12 {
		c.JSON(http.StatusBadRequest, errorResponse("Month must be between 1 and 12"))
		return
	}

	records, err := h.viz.ScoreSummary(c.Request.Context(), middleware.ScopeFrom(c), query.Year, query.Month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Score summary computed", records, gin.H{
		"year":  query.Year,
		"month": query.Month,
	}))
}
