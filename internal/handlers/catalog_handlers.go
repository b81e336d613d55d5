package handlers

import (
	"net/http"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/services"
	"mealflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// CreateProduct handles creating a product together with its inventory record.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(req, actor)
	if err != nil {
		respondServiceError(c, err, "CreateProduct: Error from catalogService.CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles editing a product's catalog fields.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(productID, req, actor)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct: Error from catalogService.UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles removing a product that has never been ordered.
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(productID, actor); err != nil {
		respondServiceError(c, err, "DeleteProduct: Error from catalogService.DeleteProduct")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetProducts handles listing the catalog with optional category filter.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var category *string
	if categoryStr := c.Query("category"); categoryStr != "" {
		category = &categoryStr
	}
	page := utils.StrToInt(c.Query("page"), 1)
	pageSize := utils.StrToInt(c.Query("page_size"), 20)

	products, totalCount, err := h.catalogService.GetProducts(category, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetProducts: Error from catalogService.GetProducts")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      products,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProductByID handles fetching a single product.
func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProductByID(productID)
	if err != nil {
		respondServiceError(c, err, "GetProductByID: Error from catalogService.GetProductByID")
		return
	}
	c.JSON(http.StatusOK, product)
}
