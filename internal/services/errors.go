package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the services in this package. Handlers map these
// onto HTTP responses; nothing below this layer is ever swallowed.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInventoryNotFound  = errors.New("inventory record not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("role not permitted for this operation")
	ErrProductExists      = errors.New("product already exists")
	ErrProductInUse       = errors.New("product is referenced by existing orders or movements")

	// ErrPersistence means the atomic unit of work did not commit. The whole
	// operation had no effect, so retrying the identical request is safe.
	ErrPersistence = errors.New("storage transaction failed")
)

// InvalidTransitionError is returned when a requested status change is not in
// the transition table for the order's current status. No state changes occur.
type InvalidTransitionError struct {
	CurrentStatus   string
	RequestedStatus string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition from %s to %s is not permitted", e.CurrentStatus, e.RequestedStatus)
}

// InsufficientStockError is returned when a stock-out would drive a product's
// quantity negative and the actor does not hold the ADMIN override. It is a
// business rule, not a transient fault; callers must not retry it blindly.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
