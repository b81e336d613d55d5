package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/repositories"
	"mealflow_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a catalog product together with its inventory
// record. InitialStock, when positive, is booked as an opening purchase
// movement so the ledger stays the source of truth from day one.
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  *string         `json:"description"`
	Category     string          `json:"category" binding:"required"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	IsAvailable  bool            `json:"is_available"`
	InitialStock int             `json:"initial_stock"`
	ReorderLevel int             `json:"reorder_level"`
	Unit         string          `json:"unit" binding:"required"`
	SKU          *string         `json:"sku"`
}

// UpdateProductRequest updates the catalog fields of a product. Stock is never
// edited here; stock changes go through movements.
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	IsAvailable bool            `json:"is_available"`
}

// --- CatalogService Interface ---
type CatalogService interface {
	CreateProduct(req CreateProductRequest, actor models.Actor) (*models.Product, error)
	UpdateProduct(productID int64, req UpdateProductRequest, actor models.Actor) (*models.Product, error)
	DeleteProduct(productID int64, actor models.Actor) error
	GetProducts(category *string, page, pageSize int) ([]models.Product, int, error)
	GetProductByID(productID int64) (*models.Product, error)
}

// --- catalogService Implementation ---
type catalogService struct {
	productRepo   repositories.ProductRepository
	inventoryRepo repositories.InventoryRepository
	auditRepo     repositories.AuditRepository
	inventorySvc  InventoryService
	txm           repositories.TxManager
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(
	pr repositories.ProductRepository,
	ir repositories.InventoryRepository,
	ar repositories.AuditRepository,
	is InventoryService,
	txm repositories.TxManager,
) CatalogService {
	return &catalogService{
		productRepo:   pr,
		inventoryRepo: ir,
		auditRepo:     ar,
		inventorySvc:  is,
		txm:           txm,
	}
}

func (s *catalogService) CreateProduct(req CreateProductRequest, actor models.Actor) (*models.Product, error) {
	if !actor.HasAnyRole(models.RoleAdmin, models.RoleManager) {
		return nil, fmt.Errorf("%w: role %q cannot manage the catalog", ErrUnauthorized, actor.Role)
	}
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.InitialStock < 0 {
		return nil, fmt.Errorf("%w: initial stock cannot be negative", ErrValidation)
	}
	if req.ReorderLevel < 0 {
		return nil, fmt.Errorf("%w: reorder level cannot be negative", ErrValidation)
	}

	product := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    utils.NewNullString(strings.TrimSpace(req.Category)),
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	uow, err := s.txm.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	productID, err := s.productRepo.CreateProduct(uow, &product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductExists
		}
		return nil, fmt.Errorf("%w: creating product: %v", ErrPersistence, err)
	}
	product.ID = productID

	item := models.InventoryItem{
		ProductID:     productID,
		StockQuantity: 0,
		ReorderLevel:  req.ReorderLevel,
		Unit:          req.Unit,
		SKU:           req.SKU,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if _, err := s.inventoryRepo.CreateInventoryItem(uow, &item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: inventory record for product %d already exists", ErrValidation, productID)
		}
		return nil, fmt.Errorf("%w: creating inventory record: %v", ErrPersistence, err)
	}

	if req.InitialStock > 0 {
		_, _, err := s.inventorySvc.ApplyMovement(uow, MovementParams{
			ProductID: productID,
			Quantity:  req.InitialStock,
			Reason:    ReasonPurchaseReceived,
			Note:      fmt.Sprintf("Opening stock for %s", product.Name),
		}, actor)
		if err != nil {
			return nil, err
		}
	}

	details, _ := json.Marshal(map[string]interface{}{
		"name":          product.Name,
		"category":      product.Category,
		"price":         product.Price.String(),
		"initial_stock": req.InitialStock,
	})
	auditEntry := models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.ActionProductCreated,
		EntityType: models.EntityProduct,
		EntityID:   productID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if _, err := s.auditRepo.CreateEntry(uow, &auditEntry); err != nil {
		return nil, fmt.Errorf("%w: recording audit entry: %v", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing product creation: %v", ErrPersistence, err)
	}
	return &product, nil
}

func (s *catalogService) UpdateProduct(productID int64, req UpdateProductRequest, actor models.Actor) (*models.Product, error) {
	if !actor.HasAnyRole(models.RoleAdmin, models.RoleManager) {
		return nil, fmt.Errorf("%w: role %q cannot manage the catalog", ErrUnauthorized, actor.Role)
	}
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	product, err := s.productRepo.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Category = utils.NewNullString(strings.TrimSpace(req.Category))
	product.Price = req.Price
	product.IsAvailable = req.IsAvailable
	product.UpdatedAt = time.Now()

	uow, err := s.txm.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	if err := s.productRepo.UpdateProduct(uow, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: updating product: %v", ErrPersistence, err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"name":         product.Name,
		"category":     product.Category,
		"price":        product.Price.String(),
		"is_available": product.IsAvailable,
	})
	auditEntry := models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.ActionProductUpdated,
		EntityType: models.EntityProduct,
		EntityID:   productID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if _, err := s.auditRepo.CreateEntry(uow, &auditEntry); err != nil {
		return nil, fmt.Errorf("%w: recording audit entry: %v", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing product update: %v", ErrPersistence, err)
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(productID int64, actor models.Actor) error {
	if !actor.HasAnyRole(models.RoleAdmin) {
		return fmt.Errorf("%w: only admins may delete products", ErrUnauthorized)
	}

	uow, err := s.txm.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	if err := s.productRepo.DeleteProduct(uow, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrProductInUse
		}
		return fmt.Errorf("%w: deleting product: %v", ErrPersistence, err)
	}

	auditEntry := models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.ActionProductDeleted,
		EntityType: models.EntityProduct,
		EntityID:   productID,
		CreatedAt:  time.Now(),
	}
	if _, err := s.auditRepo.CreateEntry(uow, &auditEntry); err != nil {
		return fmt.Errorf("%w: recording audit entry: %v", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: committing product deletion: %v", ErrPersistence, err)
	}
	return nil
}

func (s *catalogService) GetProducts(category *string, page, pageSize int) ([]models.Product, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	products, totalCount, err := s.productRepo.GetProducts(category, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, totalCount, nil
}

func (s *catalogService) GetProductByID(productID int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}
