package handlers

import (
	"net/http"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

// GetInventory handles listing inventory items with their product details.
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	page := utils.StrToInt(c.Query("page"), 1)
	pageSize := utils.StrToInt(c.Query("page_size"), 20)

	items, totalCount, err := h.inventoryService.GetInventory(page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetInventory: Error from inventoryService.GetInventory")
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      items,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetInventoryItem handles fetching one inventory item. The response includes
// the ledger total alongside the cached quantity so discrepancies are visible.
func (h *InventoryHandler) GetInventoryItem(c *gin.Context) {
	inventoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, ledgerTotal, err := h.inventoryService.GetInventoryItem(inventoryID)
	if err != nil {
		respondServiceError(c, err, "GetInventoryItem: Error from inventoryService.GetInventoryItem")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":         item,
		"ledger_total": ledgerTotal,
	})
}

// RecordMovement handles booking a manual stock movement against an item.
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	inventoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	movement, newQuantity, err := h.inventoryService.RecordMovement(inventoryID, req, actor)
	if err != nil {
		respondServiceError(c, err, "RecordMovement: Error from inventoryService.RecordMovement")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"movement":       movement,
		"stock_quantity": newQuantity,
	})
}

// GetMovements handles listing the stock movement ledger with filters.
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	var filters models.MovementFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, "Invalid query parameters: "+err.Error())
		return
	}

	movements, totalCount, err := h.inventoryService.GetMovements(filters)
	if err != nil {
		respondServiceError(c, err, "GetMovements: Error from inventoryService.GetMovements")
		return
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      movements,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}
