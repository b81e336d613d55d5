package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a customer order placed through the storefront.
// Monetary fields are snapshots taken at checkout time; they never change
// when catalog prices change later.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	OrderNumber     string          `json:"order_number" db:"order_number"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CustomerPhone   string          `json:"customer_phone" db:"customer_phone"`
	DeliveryAddress string          `json:"delivery_address" db:"delivery_address"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentStatus   string          `json:"payment_status" db:"payment_status"`
	Status          string          `json:"status" db:"status"`
	CustomerNote    *string         `json:"customer_note,omitempty" db:"customer_note"`
	InternalNote    *string         `json:"internal_note,omitempty" db:"internal_note"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	OrderItems      []OrderItem     `json:"order_items,omitempty"`
}

// OrderItem is a single line of an order. UnitPrice is copied from the
// catalog at order time.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total" db:"line_total"`
	Product   *Product        `json:"product,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	Status        *string `form:"status"`
	PaymentStatus *string `form:"payment_status"`
	Date          *string `form:"date"` // Expected format YYYY-MM-DD
	Page          int     `form:"page"`
	PageSize      int     `form:"page_size"`
}
