package handlers

import (
	"net/http"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds order intake, browsing and fulfillment services.
type OrderHandler struct {
	orderService       services.OrderService
	fulfillmentService services.FulfillmentService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService, fs services.FulfillmentService) *OrderHandler {
	return &OrderHandler{orderService: os, fulfillmentService: fs}
}

// Checkout handles the public storefront checkout. The created order starts
// in status NEW; stock is only reserved once staff accept it.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(req)
	if err != nil {
		respondServiceError(c, err, "Checkout: Error from orderService.CreateOrder")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders handles fetching orders with filters and pagination.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, "Invalid query parameters: "+err.Error())
		return
	}

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		respondServiceError(c, err, "GetOrders: Error from orderService.GetOrders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetOrderByID handles fetching a single order by ID with its items.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		respondServiceError(c, err, "GetOrderByID: Error from orderService.GetOrderByID")
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdvanceStatus handles moving an order through the fulfillment flow.
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.fulfillmentService.AdvanceStatus(orderID, req, actor)
	if err != nil {
		respondServiceError(c, err, "AdvanceStatus: Error from fulfillmentService.AdvanceStatus")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateInternalNote handles editing the back-office note on an order.
func (h *OrderHandler) UpdateInternalNote(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.UpdateOrderNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateInternalNote(orderID, req, actor)
	if err != nil {
		respondServiceError(c, err, "UpdateInternalNote: Error from orderService.UpdateInternalNote")
		return
	}
	c.JSON(http.StatusOK, order)
}
