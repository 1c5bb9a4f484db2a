package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyMember := middleware.RequireTenant()

	stats := router.Group("/statistics")
	{
		stats.GET("/by-division", anyMember, h.ByDivision)
		stats.GET("/by-category", anyMember, h.ByCategory)
		stats.GET("/ledger-totals/:id", anyMember, h.LedgerTotals)
	}
}

// ByDivision handles GET /statistics/by-division
// @Summary      Stock summary by division
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response{data=[]model.StockSummary}
// @Router       /statistics/by-division [get]
func (h *StatisticsHandler) ByDivision(c *gin.Context) {
	summaries, err := h.statisticsService.SummaryByDivision(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summaries))
}

// ByCategory handles GET /statistics/by-category
// @Summary      Stock summary by category
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response{data=[]model.StockSummary}
// @Router       /statistics/by-category [get]
func (h *StatisticsHandler) ByCategory(c *gin.Context) {
	summaries, err := h.statisticsService.SummaryByCategory(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summaries))
}

// LedgerTotals handles GET /statistics/ledger-totals/:id
// @Summary      Ledger totals for one item
// @Description  Sums the three transaction ledgers attributed to an inventory item
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Item ID"
// @Success      200          {object}  response.Response{data=model.LedgerTotals}
// @Router       /statistics/ledger-totals/{id} [get]
func (h *StatisticsHandler) LedgerTotals(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	totals, err := h.statisticsService.LedgerTotals(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, totals))
}
