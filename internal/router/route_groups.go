package router

import (
	"mealflow_backend/internal/handlers"
	"mealflow_backend/internal/middleware"
	"mealflow_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes sets up the order browsing and fulfillment routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/status", orderHandler.AdvanceStatus)
		orderRoutes.PATCH("/:id/note", orderHandler.UpdateInternalNote)
	}
}

// SetupProductRoutes sets up the catalog routes. Reads are open to all staff;
// writes are limited to admins and managers.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		productRoutes.GET("", catalogHandler.GetProducts)
		productRoutes.GET("/:id", catalogHandler.GetProductByID)

		writeRoutes := productRoutes.Group("")
		writeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
		{
			writeRoutes.POST("", catalogHandler.CreateProduct)
			writeRoutes.PUT("/:id", catalogHandler.UpdateProduct)
			writeRoutes.DELETE("/:id", catalogHandler.DeleteProduct)
		}
	}
}

// SetupInventoryRoutes sets up the inventory and movement ledger routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory")
	inventoryRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		inventoryRoutes.GET("", inventoryHandler.GetInventory)
		inventoryRoutes.GET("/:id", inventoryHandler.GetInventoryItem)
		inventoryRoutes.POST("/:id/movements", inventoryHandler.RecordMovement)
	}

	movementRoutes := authenticatedGroup.Group("/inventory-movements")
	movementRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		movementRoutes.GET("", inventoryHandler.GetMovements)
	}
}

// SetupReportRoutes sets up the dashboard and reporting routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		dashboardRoutes.GET("/attention", reportHandler.GetAttentionFeed)
		dashboardRoutes.GET("/summary", reportHandler.GetDashboardSummary)
	}

	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleStaff))
	{
		reportRoutes.GET("/low-stock", reportHandler.GetLowStock)
		reportRoutes.GET("/sales-trend", reportHandler.GetSalesTrend)
		reportRoutes.GET("/top-products", reportHandler.GetTopProducts)
		reportRoutes.GET("/stock-flow", reportHandler.GetStockFlow)
	}
}

// SetupAuditRoutes sets up the audit trail routes, admin only.
func SetupAuditRoutes(authenticatedGroup *gin.RouterGroup, auditHandler *handlers.AuditHandler) {
	auditRoutes := authenticatedGroup.Group("/audit-log")
	auditRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetEntries)
	}
}
