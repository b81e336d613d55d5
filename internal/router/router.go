package router

import (
	"database/sql"

	"mealflow_backend/internal/handlers"
	"mealflow_backend/internal/middleware"
	"mealflow_backend/internal/repositories"
	"mealflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and registers all routes.
func Setup(engine *gin.Engine, db *sql.DB) {
	txm := repositories.NewTxManager(db)

	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	productRepo := repositories.NewProductRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	movementRepo := repositories.NewMovementRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Services
	authService := services.NewAuthService(authRepo)
	inventoryService := services.NewInventoryService(inventoryRepo, movementRepo, auditRepo, txm)
	catalogService := services.NewCatalogService(productRepo, inventoryRepo, auditRepo, inventoryService, txm)
	orderService := services.NewOrderService(orderRepo, productRepo, txm)
	fulfillmentService := services.NewFulfillmentService(orderRepo, auditRepo, inventoryService, txm)
	reportService := services.NewReportService(reportRepo)
	auditService := services.NewAuditService(auditRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService, fulfillmentService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	reportHandler := handlers.NewReportHandler(reportService)
	auditHandler := handlers.NewAuditHandler(auditService)

	apiV1 := engine.Group("/api/v1")

	// Public routes: login and the storefront checkout.
	apiV1.POST("/auth/login", authHandler.Login)
	apiV1.POST("/checkout", orderHandler.Checkout)

	// Everything else requires a valid token.
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.GET("/auth/me", authHandler.GetCurrentUser)

		SetupOrderRoutes(authenticated, orderHandler)
		SetupProductRoutes(authenticated, catalogHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupAuditRoutes(authenticated, auditHandler)
	}
}
