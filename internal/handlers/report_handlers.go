package handlers

import (
	"net/http"

	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetAttentionFeed handles fetching the prioritized operational feed.
func (h *ReportHandler) GetAttentionFeed(c *gin.Context) {
	feed, err := h.reportService.GetAttentionFeed()
	if err != nil {
		respondServiceError(c, err, "GetAttentionFeed: Error from reportService.GetAttentionFeed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": feed})
}

// GetDashboardSummary handles fetching the headline dashboard metrics.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.GetDashboardSummary()
	if err != nil {
		respondServiceError(c, err, "GetDashboardSummary: Error from reportService.GetDashboardSummary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetLowStock handles fetching items at or below their reorder level.
func (h *ReportHandler) GetLowStock(c *gin.Context) {
	items, err := h.reportService.GetLowStock()
	if err != nil {
		respondServiceError(c, err, "GetLowStock: Error from reportService.GetLowStock")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetSalesTrend handles fetching the daily sales trend for a 7 or 30 day window.
func (h *ReportHandler) GetSalesTrend(c *gin.Context) {
	days := utils.StrToInt(c.Query("days"), 7)

	points, err := h.reportService.GetSalesTrend(days)
	if err != nil {
		respondServiceError(c, err, "GetSalesTrend: Error from reportService.GetSalesTrend")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points, "days": days})
}

// GetTopProducts handles fetching the best sellers over the last 30 days.
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	items, err := h.reportService.GetTopProducts()
	if err != nil {
		respondServiceError(c, err, "GetTopProducts: Error from reportService.GetTopProducts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetStockFlow handles fetching in/out ledger totals grouped by reason.
func (h *ReportHandler) GetStockFlow(c *gin.Context) {
	days := utils.StrToInt(c.Query("days"), 30)

	items, err := h.reportService.GetStockFlow(days)
	if err != nil {
		respondServiceError(c, err, "GetStockFlow: Error from reportService.GetStockFlow")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "days": days})
}
