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
)

// Order fulfillment statuses. DELIVERED, DECLINED and CANCELLED are terminal.
const (
	StatusNew            = "NEW"
	StatusAccepted       = "ACCEPTED"
	StatusPreparing      = "PREPARING"
	StatusOutForDelivery = "OUT_FOR_DELIVERY"
	StatusDelivered      = "DELIVERED"
	StatusDeclined       = "DECLINED"
	StatusCancelled      = "CANCELLED"
)

// allowedTransitions is the complete transition table. A status missing a
// target here cannot be reached from it, full stop.
var allowedTransitions = map[string][]string{
	StatusNew:            {StatusAccepted, StatusDeclined, StatusCancelled},
	StatusAccepted:       {StatusPreparing, StatusDeclined, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusDeclined, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusDeclined:       {},
	StatusCancelled:      {},
}

// IsValidStatus reports whether status is one of the seven enum values.
func IsValidStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// CanTransition reports whether the table permits moving from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AdvanceStatusRequest is the input for a status transition.
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- FulfillmentService Interface ---
type FulfillmentService interface {
	// AdvanceStatus validates and applies one status transition. Transitions
	// with a stock effect (reservation on acceptance, restoration when an
	// accepted or preparing order is declined/cancelled) run their inventory
	// deltas, ledger appends and the audit entry in the same unit of work as
	// the status write; either all of it commits or none of it does.
	AdvanceStatus(orderID int64, req AdvanceStatusRequest, actor models.Actor) (*models.Order, error)
}

// --- fulfillmentService Implementation ---
type fulfillmentService struct {
	orderRepo    repositories.OrderRepository
	auditRepo    repositories.AuditRepository
	inventorySvc InventoryService
	txm          repositories.TxManager
}

// NewFulfillmentService creates a new instance of FulfillmentService.
func NewFulfillmentService(
	or repositories.OrderRepository,
	ar repositories.AuditRepository,
	is InventoryService,
	txm repositories.TxManager,
) FulfillmentService {
	return &fulfillmentService{
		orderRepo:    or,
		auditRepo:    ar,
		inventorySvc: is,
		txm:          txm,
	}
}

func (s *fulfillmentService) AdvanceStatus(orderID int64, req AdvanceStatusRequest, actor models.Actor) (*models.Order, error) {
	if !IsValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, req.Status)
	}
	if !actor.HasAnyRole(models.RoleAdmin, models.RoleManager, models.RoleStaff) {
		return nil, fmt.Errorf("%w: role %q", ErrUnauthorized, actor.Role)
	}

	uow, err := s.txm.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	// The row lock makes concurrent transitions on the same order queue up;
	// the second caller revalidates against the committed status, not a
	// stale one.
	order, err := s.orderRepo.GetOrderForUpdate(uow, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: locking order %d: %v", ErrPersistence, orderID, err)
	}

	if !CanTransition(order.Status, req.Status) {
		return nil, &InvalidTransitionError{CurrentStatus: order.Status, RequestedStatus: req.Status}
	}

	switch {
	case order.Status == StatusNew && req.Status == StatusAccepted:
		// Reservation point: stock commits when the order is accepted, not
		// when it is created.
		note := fmt.Sprintf("Order %s accepted", order.OrderNumber)
		if err := s.applyLineMovements(uow, order, -1, ReasonOrderConsumption, note, actor); err != nil {
			return nil, err
		}
	case (order.Status == StatusAccepted || order.Status == StatusPreparing) &&
		(req.Status == StatusDeclined || req.Status == StatusCancelled):
		// Give back what acceptance reserved.
		note := fmt.Sprintf("Order %s %s", order.OrderNumber, strings.ToLower(req.Status))
		if err := s.applyLineMovements(uow, order, 1, ReasonCustomerReturn, note, actor); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.orderRepo.UpdateOrderStatus(uow, orderID, req.Status, now); err != nil {
		return nil, fmt.Errorf("%w: updating order status: %v", ErrPersistence, err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"order_number":    order.OrderNumber,
		"customer_name":   order.CustomerName,
		"previous_status": order.Status,
		"new_status":      req.Status,
	})
	entry := &models.AuditEntry{
		ActorID:    actor.ID,
		Action:     models.ActionOrderStatusChanged,
		EntityType: models.EntityOrder,
		EntityID:   order.ID,
		Details:    details,
	}
	if _, err := s.auditRepo.CreateEntry(uow, entry); err != nil {
		return nil, fmt.Errorf("%w: writing audit entry: %v", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing status transition: %v", ErrPersistence, err)
	}

	order.Status = req.Status
	order.UpdatedAt = now
	// The transition is already committed; a failed reload of line items
	// must not turn it into an error for the caller.
	items, itemsErr := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if itemsErr != nil {
		utils.LogError(itemsErr, fmt.Sprintf("reloading items for order %d after status change", orderID))
		return order, nil
	}
	order.OrderItems = items
	return order, nil
}

// applyLineMovements runs one ledger movement per order line through the
// shared movement-application procedure. sign is -1 for reservation and +1
// for restoration.
func (s *fulfillmentService) applyLineMovements(uow repositories.UnitOfWork, order *models.Order, sign int, reason, note string, actor models.Actor) error {
	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return fmt.Errorf("%w: loading order items: %v", ErrPersistence, err)
	}
	referenceID := order.ID
	for _, item := range items {
		_, _, err := s.inventorySvc.ApplyMovement(uow, MovementParams{
			ProductID:   item.ProductID,
			Quantity:    sign * item.Quantity,
			Reason:      reason,
			ReferenceID: &referenceID,
			Note:        note,
		}, actor)
		if err != nil {
			return err
		}
	}
	return nil
}
