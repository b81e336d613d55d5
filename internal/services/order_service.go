package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mealflow_backend/internal/models"
	"mealflow_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses. Orders are cash-on-delivery only; payment state is
// independent of the fulfillment status.
const (
	PaymentPending   = "COD_PENDING"
	PaymentCollected = "COD_COLLECTED"
)

// CheckoutItemRequest is one requested line of a checkout.
type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest is the storefront checkout payload. Prices are never taken
// from the client; unit prices are snapshotted from the catalog here.
type CheckoutRequest struct {
	CustomerName    string                `json:"customer_name" binding:"required"`
	CustomerPhone   string                `json:"customer_phone" binding:"required"`
	DeliveryAddress string                `json:"delivery_address" binding:"required"`
	CustomerNote    *string               `json:"customer_note"`
	Items           []CheckoutItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderNoteRequest updates the back-office internal note on an order.
type UpdateOrderNoteRequest struct {
	InternalNote *string `json:"internal_note"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(req CheckoutRequest) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	UpdateInternalNote(orderID int64, req UpdateOrderNoteRequest, actor models.Actor) (*models.Order, error)
}

// --- orderService Implementation ---
type orderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	txm         repositories.TxManager
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	pr repositories.ProductRepository,
	txm repositories.TxManager,
) OrderService {
	return &orderService{
		orderRepo:   or,
		productRepo: pr,
		txm:         txm,
	}
}

// newOrderNumber builds a short human-readable order number.
func newOrderNumber() string {
	return "MF-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateOrder records a checkout as an order in status NEW. No stock is
// touched here; reservation happens when the order is accepted.
func (s *orderService) CreateOrder(req CheckoutRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: an order needs at least one item", ErrValidation)
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be positive", ErrValidation, itemReq.ProductID)
		}
		product, err := s.productRepo.GetProductByID(itemReq.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, itemReq.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", itemReq.ProductID, err)
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("%w: product %q is not available", ErrValidation, product.Name)
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(itemReq.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: itemReq.ProductID,
			Quantity:  itemReq.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
	}

	order := models.Order{
		OrderNumber:     newOrderNumber(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Subtotal:        subtotal,
		DiscountAmount:  decimal.Zero,
		TotalAmount:     subtotal,
		PaymentStatus:   PaymentPending,
		Status:          StatusNew,
		CustomerNote:    req.CustomerNote,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	uow, err := s.txm.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	createdOrderID, err := s.orderRepo.CreateOrder(uow, &order)
	if err != nil {
		return nil, fmt.Errorf("%w: creating order record: %v", ErrPersistence, err)
	}
	for i := range orderItems {
		orderItems[i].OrderID = createdOrderID
		if _, err := s.orderRepo.CreateOrderItem(uow, &orderItems[i]); err != nil {
			return nil, fmt.Errorf("%w: creating order item (product %d): %v", ErrPersistence, orderItems[i].ProductID, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing order: %v", ErrPersistence, err)
	}

	return s.GetOrderByID(createdOrderID)
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Status != nil && *filters.Status != "" && !IsValidStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown order status %q", ErrValidation, *filters.Status)
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order %d: %w", orderID, err)
	}
	order.OrderItems = items
	return order, nil
}

func (s *orderService) UpdateInternalNote(orderID int64, req UpdateOrderNoteRequest, actor models.Actor) (*models.Order, error) {
	if !actor.HasAnyRole(models.RoleAdmin, models.RoleManager, models.RoleStaff) {
		return nil, fmt.Errorf("%w: role %q", ErrUnauthorized, actor.Role)
	}

	uow, err := s.txm.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	if err := s.orderRepo.UpdateInternalNote(uow, orderID, req.InternalNote, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: updating internal note: %v", ErrPersistence, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing note update: %v", ErrPersistence, err)
	}
	return s.GetOrderByID(orderID)
}
