package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/repositories"
	"mealflow_backend/pkg/utils"
)

// Movement reason codes. These five strings are the ledger's entire
// vocabulary; anything else is rejected before touching storage.
const (
	ReasonPurchaseReceived = "purchase-received"
	ReasonManualAdjustment = "manual-adjustment"
	ReasonOrderConsumption = "order-consumption"
	ReasonCustomerReturn   = "customer-return"
	ReasonWastage          = "wastage-loss"
)

// IsValidReason reports whether reason is one of the enumerated codes.
func IsValidReason(reason string) bool {
	switch reason {
	case ReasonPurchaseReceived, ReasonManualAdjustment, ReasonOrderConsumption, ReasonCustomerReturn, ReasonWastage:
		return true
	default:
		return false
	}
}

// MovementParams describes one stock delta to apply through the shared
// movement-application procedure.
type MovementParams struct {
	ProductID   int64
	Quantity    int // signed; positive = stock in, negative = stock out
	Reason      string
	ReferenceID *int64
	Note        string
}

// RecordMovementRequest is the input for a manual ledger movement.
type RecordMovementRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Note     string `json:"note" binding:"required"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	// ApplyMovement is the single procedure through which stock ever changes:
	// it locks the inventory row, guards against a negative result, appends
	// the ledger entry and updates the cached quantity, all on the caller's
	// unit of work. Both the manual movement API and the order fulfillment
	// state machine go through here, so the ledger-equals-sum invariant
	// cannot be violated by divergent code paths.
	// Returns the created ledger entry and the new stock quantity.
	ApplyMovement(uow repositories.UnitOfWork, params MovementParams, actor models.Actor) (*models.StockMovement, int, error)

	RecordMovement(inventoryID int64, req RecordMovementRequest, actor models.Actor) (*models.StockMovement, int, error)
	GetInventory(page, pageSize int) ([]models.InventoryItem, int, error)
	GetInventoryItem(inventoryID int64) (*models.InventoryItem, int, error)
	GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error)
}

// --- inventoryService Implementation ---
type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	movementRepo  repositories.MovementRepository
	auditRepo     repositories.AuditRepository
	txm           repositories.TxManager
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	ir repositories.InventoryRepository,
	mr repositories.MovementRepository,
	ar repositories.AuditRepository,
	txm repositories.TxManager,
) InventoryService {
	return &inventoryService{
		inventoryRepo: ir,
		movementRepo:  mr,
		auditRepo:     ar,
		txm:           txm,
	}
}

func (s *inventoryService) ApplyMovement(uow repositories.UnitOfWork, params MovementParams, actor models.Actor) (*models.StockMovement, int, error) {
	if params.Quantity == 0 {
		return nil, 0, fmt.Errorf("%w: movement quantity must be nonzero", ErrValidation)
	}
	if !IsValidReason(params.Reason) {
		return nil, 0, fmt.Errorf("%w: unknown movement reason %q", ErrValidation, params.Reason)
	}

	item, err := s.inventoryRepo.GetByProductIDForUpdate(uow, params.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrInventoryNotFound
		}
		return nil, 0, fmt.Errorf("%w: locking inventory record: %v", ErrPersistence, err)
	}

	newQuantity := item.StockQuantity + params.Quantity
	if newQuantity < 0 && !actor.HasAnyRole(models.RoleAdmin) {
		return nil, 0, &InsufficientStockError{
			ProductID: item.ProductID,
			Requested: -params.Quantity,
			Available: item.StockQuantity,
		}
	}

	if err := s.inventoryRepo.UpdateStockQuantity(uow, item.ID, newQuantity, time.Now()); err != nil {
		return nil, 0, fmt.Errorf("%w: updating cached stock quantity: %v", ErrPersistence, err)
	}

	movement := &models.StockMovement{
		ProductID:   item.ProductID,
		Quantity:    params.Quantity,
		Reason:      params.Reason,
		ReferenceID: params.ReferenceID,
		Note:        params.Note,
		ActorID:     actor.ID,
	}
	if _, err := s.movementRepo.CreateMovement(uow, movement); err != nil {
		return nil, 0, fmt.Errorf("%w: appending ledger entry: %v", ErrPersistence, err)
	}

	return movement, newQuantity, nil
}

func (s *inventoryService) RecordMovement(inventoryID int64, req RecordMovementRequest, actor models.Actor) (*models.StockMovement, int, error) {
	if req.Quantity == 0 {
		return nil, 0, fmt.Errorf("%w: movement quantity must be nonzero", ErrValidation)
	}
	if utils.IsEmpty(req.Note) {
		return nil, 0, fmt.Errorf("%w: a note is required for manual movements", ErrValidation)
	}
	if !IsValidReason(req.Reason) {
		return nil, 0, fmt.Errorf("%w: unknown movement reason %q", ErrValidation, req.Reason)
	}
	if !actor.HasAnyRole(models.RoleAdmin, models.RoleManager, models.RoleStaff) {
		return nil, 0, fmt.Errorf("%w: role %q", ErrUnauthorized, actor.Role)
	}

	item, err := s.inventoryRepo.GetByID(inventoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrInventoryNotFound
		}
		return nil, 0, fmt.Errorf("%w: fetching inventory record: %v", ErrPersistence, err)
	}

	uow, err := s.txm.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	movement, newQuantity, err := s.ApplyMovement(uow, MovementParams{
		ProductID: item.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Note:      req.Note,
	}, actor)
	if err != nil {
		return nil, 0, err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"inventory_id": item.ID,
		"product_id":   item.ProductID,
		"quantity":     req.Quantity,
		"reason":       req.Reason,
		"stock_before": newQuantity - req.Quantity,
		"stock_after":  newQuantity,
	})
	entry := &models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.ActionStockMovement,
		EntityType: models.EntityInventory,
		EntityID:   item.ID,
		Details:    details,
	}
	if _, err := s.auditRepo.CreateEntry(uow, entry); err != nil {
		return nil, 0, fmt.Errorf("%w: writing audit entry: %v", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("%w: committing stock movement: %v", ErrPersistence, err)
	}
	return movement, newQuantity, nil
}

func (s *inventoryService) GetInventory(page, pageSize int) ([]models.InventoryItem, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	items, totalCount, err := s.inventoryRepo.GetInventory(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get inventory: %w", err)
	}
	return items, totalCount, nil
}

// GetInventoryItem returns the record together with the ledger-derived stock
// total. The two must agree; surfacing both lets the admin UI flag drift.
func (s *inventoryService) GetInventoryItem(inventoryID int64) (*models.InventoryItem, int, error) {
	item, err := s.inventoryRepo.GetByID(inventoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrInventoryNotFound
		}
		return nil, 0, fmt.Errorf("failed to get inventory record: %w", err)
	}
	ledgerTotal, err := s.movementRepo.SumByProductID(item.ProductID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to sum ledger for product %d: %w", item.ProductID, err)
	}
	return item, ledgerTotal, nil
}

func (s *inventoryService) GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	if filters.Reason != nil && *filters.Reason != "" && !IsValidReason(*filters.Reason) {
		return nil, 0, fmt.Errorf("%w: unknown movement reason %q", ErrValidation, *filters.Reason)
	}
	movements, totalCount, err := s.movementRepo.GetMovements(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, totalCount, nil
}
